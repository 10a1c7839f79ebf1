package payment

import (
	"errors"
	"net/url"
	"testing"
	"time"
)

var jan2025 = time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)

func validForm() Form {
	return Form{
		CardholderName: "Asha Rao",
		CardNumber:     "123456789012",
		ExpiryDate:     "12/25",
		CVV:            "123",
	}
}

func TestValidateAcceptsValidForm(t *testing.T) {
	if err := Validate(validForm(), jan2025); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
}

func TestValidateCardNumber(t *testing.T) {
	tests := []struct {
		number string
		ok     bool
	}{
		{"123456789012", true},
		{"12345678901", false},
		{"1234567890123", false},
		{"1234 5678 901", false},
		{"12345678901a", false},
		{"", false},
		{"１23456789012", false},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			f := validForm()
			f.CardNumber = tt.number
			err := Validate(f, jan2025)
			if tt.ok && err != nil {
				t.Fatalf("expected %q accepted, got %v", tt.number, err)
			}
			if !tt.ok {
				var ve *ValidationError
				if !errors.As(err, &ve) || ve.Field != "cardNumber" {
					t.Fatalf("expected cardNumber error, got %v", err)
				}
				if ve.Message != "Card number must be exactly 12 digits." {
					t.Fatalf("unexpected message %q", ve.Message)
				}
			}
		})
	}
}

func TestValidateExpiry(t *testing.T) {
	tests := []struct {
		expiry  string
		message string
	}{
		{"12/25", ""},
		{"01/25", ""}, // current month is still valid
		{"01/24", "Card has expired."},
		{"12/24", "Card has expired."},
		{"13/25", "Please enter a valid expiry date in MM/YY format."},
		{"00/25", "Please enter a valid expiry date in MM/YY format."},
		{"1/25", "Please enter a valid expiry date in MM/YY format."},
		{"01/2025", "Please enter a valid expiry date in MM/YY format."},
		{"", "Please enter a valid expiry date in MM/YY format."},
	}
	for _, tt := range tests {
		t.Run(tt.expiry, func(t *testing.T) {
			f := validForm()
			f.ExpiryDate = tt.expiry
			err := Validate(f, jan2025)
			if tt.message == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Message != tt.message {
				t.Fatalf("expected %q, got %v", tt.message, err)
			}
		})
	}
}

func TestExpiredMonthBoundary(t *testing.T) {
	june := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	if Expired("06/25", june) {
		t.Fatal("card expiring this month must be valid")
	}
	if !Expired("05/25", june) {
		t.Fatal("card that expired last month must be rejected")
	}
	if Expired("01/26", june) {
		t.Fatal("next year's card must be valid")
	}
}

func TestValidateCVV(t *testing.T) {
	for cvv, ok := range map[string]bool{"123": true, "12": false, "1234": false, "12a": false, "": false} {
		f := validForm()
		f.CVV = cvv
		err := Validate(f, jan2025)
		if ok != (err == nil) {
			t.Fatalf("cvv %q: ok=%v err=%v", cvv, ok, err)
		}
		if err != nil && err.(*ValidationError).Message != "CVV must be exactly 3 digits." {
			t.Fatalf("unexpected message %v", err)
		}
	}
}

func TestValidateStopsAtFirstFailure(t *testing.T) {
	err := Validate(Form{}, jan2025)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "cardholderName" || ve.Message != "Please enter your cardholder name." {
		t.Fatalf("expected the name rule first, got %+v", ve)
	}

	// Whitespace-only names pass the raw non-empty check.
	f := Form{CardholderName: " ", CardNumber: "123", ExpiryDate: "bad", CVV: "x"}
	if err := Validate(f, jan2025); err.(*ValidationError).Field != "cardNumber" {
		t.Fatalf("expected cardNumber next, got %v", err)
	}
}

func TestFormFromValuesAndSet(t *testing.T) {
	f := FormFromValues(url.Values{
		"cardholderName": {"Asha Rao"},
		"cardNumber":     {"123456789012"},
		"expiryDate":     {"12/25"},
		"cvv":            {"123"},
	})
	if f != validForm() {
		t.Fatalf("unexpected form %+v", f)
	}
	if !f.Set("cvv", "999") || f.CVV != "999" {
		t.Fatal("expected cvv update")
	}
	if f.Set("pin", "0000") {
		t.Fatal("unknown field must be rejected")
	}
}
