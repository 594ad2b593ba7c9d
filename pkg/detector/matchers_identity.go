package detector

import (
	"regexp"

	"github.com/nvisycom/core/pkg/category"
)

// NewSSNMatcher detects formatted Social Security Numbers. Never-issued
// ranges disqualify the candidate.
func NewSSNMatcher() Matcher {
	return &patternMatcher{
		name:           "ssn",
		cat:            category.SSN,
		pattern:        regexp.MustCompile(`\b\d{3}[-\s]\d{2}[-\s]\d{4}\b`),
		baseConfidence: 0.92,
		normalize:      digitsOnly,
		validate:       validSSN,
		onFail:         failReject,
		keywords:       []string{"ssn", "social security"},
		keywordBoost:   0.07,
	}
}

// NewDateOfBirthMatcher detects dates near birth-related context. Bare
// dates are too common to flag without it.
func NewDateOfBirthMatcher() Matcher {
	return &patternMatcher{
		name: "date_of_birth",
		cat:  category.DateOfBirth,
		pattern: regexp.MustCompile(
			`\b(?:\d{1,2}[/-]\d{1,2}[/-](?:19|20)\d{2}|(?:19|20)\d{2}-\d{2}-\d{2})\b`),
		baseConfidence: 0.8,
		keywords:       []string{"dob", "birth", "born"},
		requireKeyword: true,
		keywordBoost:   0.1,
	}
}

// NewPassportMatcher detects passport numbers near passport context.
func NewPassportMatcher() Matcher {
	return &patternMatcher{
		name:           "passport",
		cat:            category.PassportNumber,
		pattern:        regexp.MustCompile(`\b[A-Z]?\d{8,9}\b`),
		baseConfidence: 0.75,
		keywords:       []string{"passport"},
		requireKeyword: true,
		keywordBoost:   0.1,
	}
}

// NewDriversLicenseMatcher detects license numbers near licensing context.
// State formats vary too widely for a standalone pattern.
func NewDriversLicenseMatcher() Matcher {
	return &patternMatcher{
		name:           "drivers_license",
		cat:            category.DriversLicense,
		pattern:        regexp.MustCompile(`\b[A-Z]\d{6,12}\b`),
		baseConfidence: 0.7,
		keywords:       []string{"driver", "license", "licence", "dmv", "dl#"},
		requireKeyword: true,
		keywordBoost:   0.15,
	}
}

// NewEINMatcher detects Employer Identification Numbers near tax context.
func NewEINMatcher() Matcher {
	return &patternMatcher{
		name:           "ein",
		cat:            category.TaxID,
		pattern:        regexp.MustCompile(`\b\d{2}-\d{7}\b`),
		baseConfidence: 0.8,
		keywords:       []string{"ein", "employer identification", "tax id", "tin"},
		requireKeyword: true,
		keywordBoost:   0.1,
	}
}

// NewMedicareMBIMatcher detects Medicare Beneficiary Identifiers. The MBI
// alphabet excludes S, L, O, I, B and Z in every letter position.
func NewMedicareMBIMatcher() Matcher {
	const letter = "[AC-HJKMNP-RT-Y]"
	const letterOrDigit = "[AC-HJKMNP-RT-Y0-9]"
	return &patternMatcher{
		name: "medicare_mbi",
		cat:  category.MedicareID,
		pattern: regexp.MustCompile(
			`\b[1-9]` + letter + letterOrDigit + `\d-?` +
				letter + letterOrDigit + `\d-?` +
				letter + letter + `\d{2}\b`),
		baseConfidence: 0.9,
	}
}

// NewVINMatcher detects Vehicle Identification Numbers. The position-9
// check digit disqualifies random 17-character strings.
func NewVINMatcher() Matcher {
	return &patternMatcher{
		name:           "vin",
		cat:            category.VIN,
		pattern:        regexp.MustCompile(`\b[A-HJ-NPR-Za-hj-npr-z0-9]{17}\b`),
		baseConfidence: 0.9,
		validate:       vinCheckDigit,
		onFail:         failReject,
	}
}
