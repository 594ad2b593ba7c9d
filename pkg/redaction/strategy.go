package redaction

import (
	"strings"

	"github.com/nvisycom/core/pkg/category"
	"github.com/nvisycom/core/pkg/core"
)

const defaultMinMaskedFraction = 0.5

// Apply renders the replacement for one matched value under the resolved
// rule. The returned action is the strategy name recorded in the report.
func Apply(rule Rule, value string, cat category.Category, session *Session) (string, string, error) {
	switch rule.Strategy {
	case StrategyMask:
		return fullMask(rule, value, cat), string(StrategyMask), nil
	case StrategyPartialMask:
		return partialMask(rule, value, cat), string(StrategyPartialMask), nil
	case StrategyTokenize:
		tok, err := session.Token(Namespace(cat), value)
		return tok, string(StrategyTokenize), err
	case StrategyHash:
		h, err := session.Hash(value)
		return h, string(StrategyHash), err
	case StrategyRemove:
		return "", string(StrategyRemove), nil
	case StrategyCustom:
		if rule.Transform == nil {
			return "", "", core.NewError(core.ErrInvalidConfig, "redaction", "custom strategy has no transform")
		}
		out, err := rule.Transform(value, cat)
		return out, string(StrategyCustom), err
	}
	return "", "", core.NewError(core.ErrInvalidConfig, "redaction", "unknown strategy "+string(rule.Strategy))
}

func maskChar(rule Rule) rune {
	if rule.MaskChar != 0 {
		return rule.MaskChar
	}
	return '*'
}

// fullMask covers the whole value: a character run of equal rune length, or
// a category placeholder such as [REDACTED:SSN].
func fullMask(rule Rule, value string, cat category.Category) string {
	if rule.Placeholder {
		leaf := string(cat)
		if i := strings.IndexByte(leaf, '.'); i >= 0 {
			leaf = leaf[i+1:]
		}
		return "[REDACTED:" + strings.ToUpper(leaf) + "]"
	}
	return strings.Repeat(string(maskChar(rule)), len([]rune(value)))
}

// partialMask keeps the configured edges and masks the middle. Email
// values keep the first rune of the local part and the whole domain. The
// kept edges shrink until the masked share reaches the configured floor.
func partialMask(rule Rule, value string, cat category.Category) string {
	if cat == category.Email {
		if at := strings.LastIndexByte(value, '@'); at > 0 {
			local := []rune(value[:at])
			return string(local[0]) + "***" + value[at:]
		}
	}

	runes := []rune(value)
	n := len(runes)
	prefix, suffix := rule.KeepPrefix, rule.KeepSuffix
	if prefix < 0 {
		prefix = 0
	}
	if suffix < 0 {
		suffix = 0
	}

	floor := rule.MinMaskedFraction
	if floor <= 0 {
		floor = defaultMinMaskedFraction
	}
	minMasked := int(floor * float64(n))
	if minMasked < 1 {
		minMasked = 1
	}

	// Shrink the suffix first, then the prefix, until enough is masked.
	for n-prefix-suffix < minMasked {
		if suffix > 0 {
			suffix--
		} else if prefix > 0 {
			prefix--
		} else {
			break
		}
	}

	masked := n - prefix - suffix
	if masked <= 0 {
		return strings.Repeat(string(maskChar(rule)), n)
	}
	return string(runes[:prefix]) +
		strings.Repeat(string(maskChar(rule)), masked) +
		string(runes[n-suffix:])
}
