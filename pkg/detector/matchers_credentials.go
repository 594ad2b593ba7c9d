package detector

import (
	"regexp"

	"github.com/nvisycom/core/pkg/category"
)

// NewAWSAccessKeyMatcher detects AWS access key IDs by their fixed prefix.
func NewAWSAccessKeyMatcher() Matcher {
	return &patternMatcher{
		name:           "aws_access_key",
		cat:            category.AWSAccessKey,
		pattern:        regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`),
		baseConfidence: 0.95,
	}
}

// NewAPIKeyMatcher detects generic secrets: long tokens near key context
// with enough entropy to rule out prose.
func NewAPIKeyMatcher() Matcher {
	return &patternMatcher{
		name:           "api_key",
		cat:            category.APIKey,
		pattern:        regexp.MustCompile(`\b[A-Za-z0-9_\-]{24,64}\b`),
		baseConfidence: 0.7,
		validate: func(v string) bool {
			return shannonEntropy(v) >= 3.5
		},
		onFail:         failReject,
		keywords:       []string{"api_key", "api-key", "apikey", "secret", "token", "key"},
		requireKeyword: true,
		keywordBoost:   0.15,
	}
}

// NewJWTMatcher detects JSON Web Tokens by their three-part base64url
// shape. The signature part may be empty for unsecured tokens.
func NewJWTMatcher() Matcher {
	return &patternMatcher{
		name:           "jwt",
		cat:            category.JWTToken,
		pattern:        regexp.MustCompile(`\beyJ[A-Za-z0-9_\-]{6,}\.[A-Za-z0-9_\-]{6,}\.[A-Za-z0-9_\-]*`),
		baseConfidence: 0.95,
	}
}

// NewPEMPrivateKeyMatcher detects PEM-armored private key blocks, header
// through footer.
func NewPEMPrivateKeyMatcher() Matcher {
	return &patternMatcher{
		name:           "pem_private_key",
		cat:            category.PrivateKey,
		pattern:        regexp.MustCompile(`(?s)-----BEGIN [A-Z ]*PRIVATE KEY-----.*?-----END [A-Z ]*PRIVATE KEY-----`),
		baseConfidence: 0.99,
	}
}
