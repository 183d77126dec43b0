package validator

import (
	"errors"
	"strings"
	"unicode"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone reduces a dialable phone number to +<digits> form. Formatting
// characters are stripped; bare 10-digit numbers are assumed to be US/Canada.
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	hasPlus := strings.HasPrefix(strings.TrimSpace(raw), "+")

	for _, r := range raw {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
			continue
		}
		switch r {
		case '+', ' ', '-', '(', ')', '.':
			// formatting only
		default:
			return "", ErrInvalidPhone
		}
	}

	n := digits.String()
	if len(n) < 10 || len(n) > 15 {
		return "", ErrInvalidPhone
	}

	if !hasPlus && len(n) == 10 {
		n = "1" + n
	}
	return "+" + n, nil
}
