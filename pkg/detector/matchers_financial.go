package detector

import (
	"regexp"

	"github.com/nvisycom/core/pkg/category"
)

// NewCreditCardMatcher detects payment card numbers of 13 to 19 digits,
// with or without separators. Luhn failure disqualifies.
func NewCreditCardMatcher() Matcher {
	return &patternMatcher{
		name:           "credit_card",
		cat:            category.CreditCard,
		pattern:        regexp.MustCompile(`\b\d(?:[ -]?\d){12,18}\b`),
		baseConfidence: 0.95,
		normalize:      stripSeparators,
		validate: func(v string) bool {
			return len(v) >= 13 && len(v) <= 19 && luhn(v)
		},
		onFail: failReject,
	}
}

// NewIBANMatcher detects IBANs. The ISO 7064 mod-97 check disqualifies
// random country-prefixed strings.
func NewIBANMatcher() Matcher {
	return &patternMatcher{
		name:           "iban",
		cat:            category.IBAN,
		pattern:        regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`),
		baseConfidence: 0.95,
		validate:       ibanMod97,
		onFail:         failReject,
	}
}

// NewRoutingNumberMatcher detects ABA routing numbers. Nine bare digits
// need both the checksum and routing context to qualify.
func NewRoutingNumberMatcher() Matcher {
	return &patternMatcher{
		name:           "routing_number",
		cat:            category.RoutingNumber,
		pattern:        regexp.MustCompile(`\b\d{9}\b`),
		baseConfidence: 0.85,
		validate:       abaChecksum,
		onFail:         failReject,
		keywords:       []string{"routing", "aba"},
		requireKeyword: true,
		keywordBoost:   0.1,
	}
}

// NewBankAccountMatcher detects account numbers near account context.
// There is no universal format, so the gate carries the signal.
func NewBankAccountMatcher() Matcher {
	return &patternMatcher{
		name:           "bank_account",
		cat:            category.BankAccount,
		pattern:        regexp.MustCompile(`\b\d{8,17}\b`),
		baseConfidence: 0.65,
		keywords:       []string{"account", "acct"},
		requireKeyword: true,
		keywordBoost:   0.1,
	}
}

// NewSWIFTMatcher detects SWIFT/BIC codes near banking context.
func NewSWIFTMatcher() Matcher {
	return &patternMatcher{
		name:           "swift_code",
		cat:            category.SwiftCode,
		pattern:        regexp.MustCompile(`\b[A-Z]{6}[A-Z0-9]{2}(?:[A-Z0-9]{3})?\b`),
		baseConfidence: 0.8,
		keywords:       []string{"swift", "bic"},
		requireKeyword: true,
		keywordBoost:   0.1,
	}
}

// NewEthereumAddressMatcher detects Ethereum addresses. Mixed-case
// addresses must pass the EIP-55 checksum.
func NewEthereumAddressMatcher() Matcher {
	return &patternMatcher{
		name:           "ethereum_address",
		cat:            category.CryptoWallet,
		pattern:        regexp.MustCompile(`\b0x[0-9a-fA-F]{40}\b`),
		baseConfidence: 0.9,
		validate:       validEthereumAddress,
		onFail:         failReject,
	}
}

// NewBitcoinAddressMatcher detects Bitcoin legacy and bech32 addresses by
// format. Base58 has no cheap standalone checksum, so confidence stays
// below the checksum-validated categories.
func NewBitcoinAddressMatcher() Matcher {
	return &patternMatcher{
		name:           "bitcoin_address",
		cat:            category.CryptoWallet,
		pattern:        regexp.MustCompile(`\b(?:[13][A-HJ-NP-Za-km-z1-9]{25,34}|bc1[a-z0-9]{11,71})\b`),
		baseConfidence: 0.8,
	}
}
