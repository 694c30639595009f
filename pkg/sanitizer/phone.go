package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegions are tried in order for numbers without a country code.
var DefaultPhoneRegions = []string{"US", "GB"}

// NormalizePhone returns phone in E.164 form, or "" when it does not parse
// as a valid number in any of the regions.
func NormalizePhone(phone string, regions ...string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	if len(regions) == 0 {
		regions = DefaultPhoneRegions
	}

	for _, region := range regions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err != nil || !phonenumbers.IsValidNumber(parsed) {
			continue
		}
		return phonenumbers.Format(parsed, phonenumbers.E164)
	}
	return ""
}
