package payment

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ValidationError names the first field that failed and the message to show.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

var (
	cardNumberPattern = regexp.MustCompile(`^[0-9]{12}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	cvvPattern        = regexp.MustCompile(`^[0-9]{3}$`)
)

type rule struct {
	field   string
	message string
	ok      func(f Form, now time.Time) bool
}

// Order matters: only the first failing rule is reported, and the expiry
// check relies on the format rule having passed.
var rules = []rule{
	{
		field:   "cardholderName",
		message: "Please enter your cardholder name.",
		ok:      func(f Form, _ time.Time) bool { return f.CardholderName != "" },
	},
	{
		field:   "cardNumber",
		message: "Card number must be exactly 12 digits.",
		ok:      func(f Form, _ time.Time) bool { return cardNumberPattern.MatchString(f.CardNumber) },
	},
	{
		field:   "expiryDate",
		message: "Please enter a valid expiry date in MM/YY format.",
		ok:      func(f Form, _ time.Time) bool { return expiryPattern.MatchString(f.ExpiryDate) },
	},
	{
		field:   "expiryDate",
		message: "Card has expired.",
		ok:      func(f Form, now time.Time) bool { return !Expired(f.ExpiryDate, now) },
	},
	{
		field:   "cvv",
		message: "CVV must be exactly 3 digits.",
		ok:      func(f Form, _ time.Time) bool { return cvvPattern.MatchString(f.CVV) },
	},
}

// Validate runs the rules in order and returns the first failure as a
// *ValidationError, or nil when the form may be submitted.
func Validate(f Form, now time.Time) error {
	for _, r := range rules {
		if !r.ok(f, now) {
			return &ValidationError{Field: r.field, Message: r.message}
		}
	}
	return nil
}

// Expired compares a well-formed MM/YY expiry against now using two-digit
// years. A card expiring in the current month is still valid.
func Expired(expiry string, now time.Time) bool {
	mm, yy, ok := strings.Cut(expiry, "/")
	if !ok {
		return true
	}
	month, err := strconv.Atoi(mm)
	if err != nil {
		return true
	}
	year, err := strconv.Atoi(yy)
	if err != nil {
		return true
	}
	currentYear := now.Year() % 100
	currentMonth := int(now.Month())
	return year < currentYear || (year == currentYear && month < currentMonth)
}
