package appointments

// Status is the display branch chosen for an appointment.
type Status int

const (
	StatusActionable Status = iota
	StatusPaid
	StatusCancelled
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusPaid:
		return "paid"
	case StatusCancelled:
		return "cancelled"
	case StatusCompleted:
		return "completed"
	default:
		return "actionable"
	}
}

// Label is the badge text for the terminal states; actionable has none.
func (s Status) Label() string {
	switch s {
	case StatusPaid:
		return "Paid"
	case StatusCancelled:
		return "Appointment Cancelled"
	case StatusCompleted:
		return "Complete Appointment"
	default:
		return ""
	}
}

// Actionable reports whether Pay and Cancel are offered.
func (s Status) Actionable() bool {
	return s == StatusActionable
}

// Classify picks the display branch. The backend does not keep the three
// flags exclusive, so the first match wins: completed, then paid, then
// cancelled. A record that is both paid and cancelled shows as paid.
func Classify(a Appointment) Status {
	switch {
	case a.IsCompleted:
		return StatusCompleted
	case a.Payment:
		return StatusPaid
	case a.Cancelled:
		return StatusCancelled
	default:
		return StatusActionable
	}
}
