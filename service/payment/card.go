package payment

import "strings"

// FormatCardNumber groups a card number into blocks of four digits for
// display, e.g. "4242424242424242" -> "4242 4242 4242 4242".
// Non-digit characters in the input are dropped first.
func FormatCardNumber(number string) string {
	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	clean := digits.String()
	var out strings.Builder
	for i, r := range clean {
		if i > 0 && i%4 == 0 {
			out.WriteByte(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

// FormatExpiry renders a raw expiry like "1225" as "12/25". Inputs that
// already carry a separator or are shorter than three digits are
// returned unchanged.
func FormatExpiry(expiry string) string {
	if strings.Contains(expiry, "/") || len(expiry) < 3 {
		return expiry
	}
	return expiry[:2] + "/" + expiry[2:]
}
