package detector

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nvisycom/core/pkg/category"
)

// NewEmailMatcher detects email addresses.
func NewEmailMatcher() Matcher {
	return &patternMatcher{
		name:           "email",
		cat:            category.Email,
		pattern:        regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9](?:[A-Za-z0-9.\-]*[A-Za-z0-9])?\.[A-Za-z]{2,}`),
		baseConfidence: 0.95,
	}
}

// NewPhoneMatcher detects North American phone numbers. An invalid NANP
// area or exchange code weakens the candidate rather than dropping it,
// since the digits may still be a foreign number. The leading context
// group keeps the match from starting inside a longer digit run, such as
// the tail of a card number.
func NewPhoneMatcher() Matcher {
	return &patternMatcher{
		name:           "phone",
		cat:            category.PhoneNumber,
		pattern:        regexp.MustCompile(`(?:^|[^\d])((?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4})\b`),
		baseConfidence: 0.7,
		normalize:      digitsOnly,
		validate:       validUSPhone,
		onFail:         failWeaken,
		keywords:       []string{"phone", "tel", "mobile", "cell", "fax", "call"},
		keywordBoost:   0.2,
	}
}

// NewStreetAddressMatcher detects street addresses of the common
// "number name type" shape.
func NewStreetAddressMatcher() Matcher {
	return &patternMatcher{
		name: "street_address",
		cat:  category.StreetAddress,
		pattern: regexp.MustCompile(`\b\d{1,6} [A-Z][A-Za-z]*(?: [A-Z][A-Za-z]*)* ` +
			`(?:St|Street|Ave|Avenue|Rd|Road|Blvd|Boulevard|Ln|Lane|Dr|Drive|Ct|Court|Way|Pl|Place|Ter|Terrace)\.?\b`),
		baseConfidence: 0.75,
	}
}

// NewGPSMatcher detects decimal latitude,longitude pairs inside valid
// coordinate ranges.
func NewGPSMatcher() Matcher {
	return &patternMatcher{
		name:           "gps_coordinates",
		cat:            category.GPSCoordinates,
		pattern:        regexp.MustCompile(`-?\d{1,3}\.\d{3,},\s*-?\d{1,3}\.\d{3,}`),
		baseConfidence: 0.8,
		validate:       validCoordinatePair,
		onFail:         failReject,
	}
}

func validCoordinatePair(value string) bool {
	parts := strings.SplitN(value, ",", 2)
	if len(parts) != 2 {
		return false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func digitsOnly(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
