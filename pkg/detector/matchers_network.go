package detector

import (
	"net"
	"regexp"
	"strings"

	"github.com/nvisycom/core/pkg/category"
)

// NewIPv4Matcher detects IPv4 addresses. Out-of-range octets disqualify.
func NewIPv4Matcher() Matcher {
	return &patternMatcher{
		name:           "ipv4",
		cat:            category.IPAddress,
		pattern:        regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
		baseConfidence: 0.9,
		validate: func(v string) bool {
			ip := net.ParseIP(v)
			return ip != nil && ip.To4() != nil
		},
		onFail: failReject,
	}
}

// NewIPv6Matcher detects IPv6 addresses, validated by the net parser so
// colon-grouped hex that is not an address (such as a MAC) is rejected.
func NewIPv6Matcher() Matcher {
	return &patternMatcher{
		name:           "ipv6",
		cat:            category.IPv6Address,
		pattern:        regexp.MustCompile(`\b(?:[0-9a-fA-F]{1,4}:){2,7}[0-9a-fA-F]{1,4}\b`),
		baseConfidence: 0.9,
		validate: func(v string) bool {
			ip := net.ParseIP(v)
			return ip != nil && strings.Contains(v, ":") && ip.To4() == nil
		},
		onFail: failReject,
	}
}

// NewMACAddressMatcher detects MAC addresses in colon or dash notation.
func NewMACAddressMatcher() Matcher {
	return &patternMatcher{
		name:           "mac_address",
		cat:            category.MACAddress,
		pattern:        regexp.MustCompile(`\b[0-9A-Fa-f]{2}(?:[:-][0-9A-Fa-f]{2}){5}\b`),
		baseConfidence: 0.85,
	}
}

// NewIMEIMatcher detects IMEIs: fifteen digits with a Luhn check digit,
// near device context.
func NewIMEIMatcher() Matcher {
	return &patternMatcher{
		name:           "imei",
		cat:            category.IMEI,
		pattern:        regexp.MustCompile(`\b\d{15}\b`),
		baseConfidence: 0.9,
		validate:       luhn,
		onFail:         failReject,
		keywords:       []string{"imei"},
		requireKeyword: true,
		keywordBoost:   0.05,
	}
}

// NewURLCredentialsMatcher detects passwords embedded in URL userinfo. The
// capture group claims only the password, leaving the URL intact.
func NewURLCredentialsMatcher() Matcher {
	return &patternMatcher{
		name:           "url_credentials",
		cat:            category.Password,
		pattern:        regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.\-]*://[^\s/:@]+:([^\s@/]+)@`),
		baseConfidence: 0.95,
	}
}
