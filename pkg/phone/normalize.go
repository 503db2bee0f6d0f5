// Package phone canonicalizes North American numbers into the +1XXXXXXXXXX
// form used as the join key between intake, Twilio, and Stripe.
package phone

import (
	"strings"

	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "CA"

// Normalize maps arbitrary input to +1 followed by ten digits. Only ten
// digits, or eleven with a leading 1, are accepted; the number itself is
// parsed and formatted by libphonenumber. Already-canonical values pass
// through unchanged.
func Normalize(input string) (string, error) {
	if IsCanonical(input) {
		return input, nil
	}

	digits := phonenumbers.NormalizeDigitsOnly(input)
	switch {
	case len(digits) == 11 && digits[0] == '1':
		digits = digits[1:]
	case len(digits) != 10:
		return "", domain.NewInvalidPhoneError(input)
	}

	num, err := phonenumbers.Parse("+1"+digits, defaultRegion)
	if err != nil || num.GetCountryCode() != 1 {
		return "", domain.NewInvalidPhoneError(input)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// IsCanonical reports whether s is exactly +1 followed by ten digits
func IsCanonical(s string) bool {
	if len(s) != 12 || !strings.HasPrefix(s, "+1") {
		return false
	}
	for _, r := range s[2:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Display renders a canonical number in national format, e.g. (403) 613-6014.
// Input that libphonenumber cannot parse is returned as-is.
func Display(e164 string) string {
	num, err := phonenumbers.Parse(e164, defaultRegion)
	if err != nil {
		return e164
	}
	return phonenumbers.Format(num, phonenumbers.NATIONAL)
}
