package payment

import "net/url"

// Form is the card data typed into the payment modal. It only lives as long
// as the modal is open and is forwarded to the backend untouched.
type Form struct {
	CardholderName string `json:"cardholderName"`
	CardNumber     string `json:"cardNumber"`
	ExpiryDate     string `json:"expiryDate"`
	CVV            string `json:"cvv"`
}

// FormFromValues reads the modal's input names from a posted HTML form.
func FormFromValues(v url.Values) Form {
	return Form{
		CardholderName: v.Get("cardholderName"),
		CardNumber:     v.Get("cardNumber"),
		ExpiryDate:     v.Get("expiryDate"),
		CVV:            v.Get("cvv"),
	}
}

// Set updates one field by its input name and reports whether the name is known.
func (f *Form) Set(name, value string) bool {
	switch name {
	case "cardholderName":
		f.CardholderName = value
	case "cardNumber":
		f.CardNumber = value
	case "expiryDate":
		f.ExpiryDate = value
	case "cvv":
		f.CVV = value
	default:
		return false
	}
	return true
}
