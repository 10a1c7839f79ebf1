package appointments

import (
	"strconv"
	"strings"
)

type Address struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

type Doctor struct {
	ID         string  `json:"_id,omitempty"`
	Name       string  `json:"name"`
	Speciality string  `json:"speciality"`
	Address    Address `json:"address"`
	Image      string  `json:"image"`
	Fees       float64 `json:"fees"`
	Available  bool    `json:"available,omitempty"`
}

// Appointment is the backend's booking record. The portal never edits one
// locally; it re-fetches after every mutation.
type Appointment struct {
	ID          string  `json:"_id"`
	UserID      string  `json:"userId,omitempty"`
	DocID       string  `json:"docId,omitempty"`
	SlotDate    string  `json:"slotDate"`
	SlotTime    string  `json:"slotTime"`
	Amount      float64 `json:"amount,omitempty"`
	Payment     bool    `json:"payment"`
	Cancelled   bool    `json:"cancelled"`
	IsCompleted bool    `json:"isCompleted"`
	DocData     Doctor  `json:"docData"`
}

func (a Appointment) Status() Status {
	return Classify(a)
}

// SlotLabel is the "Date & Time" line shown for the appointment.
func (a Appointment) SlotLabel() string {
	return FormatSlotDate(a.SlotDate) + " | " + a.SlotTime
}

var monthAbbrev = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// FormatSlotDate turns "20_1_2025" into "20 Jan 2025". Input that does not
// look like D_M_Y is returned as is.
func FormatSlotDate(slotDate string) string {
	parts := strings.Split(slotDate, "_")
	if len(parts) != 3 {
		return slotDate
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return slotDate
	}
	return parts[0] + " " + monthAbbrev[month-1] + " " + parts[2]
}

// Reversed returns a new slice in reverse order, leaving list untouched.
func Reversed(list []Appointment) []Appointment {
	out := make([]Appointment, len(list))
	for i, a := range list {
		out[len(list)-1-i] = a
	}
	return out
}
