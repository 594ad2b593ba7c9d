// Package redaction turns final matches into replacement text. A policy
// maps categories to strategies, a session keeps the per-job token table,
// and the strategies render the replacements.
package redaction

import (
	"fmt"

	"github.com/nvisycom/core/pkg/category"
	"github.com/nvisycom/core/pkg/core"
)

// StrategyKind names a replacement strategy.
type StrategyKind string

const (
	// StrategyMask replaces the value with a character run or placeholder.
	StrategyMask StrategyKind = "mask"
	// StrategyPartialMask keeps a prefix/suffix and masks the middle.
	StrategyPartialMask StrategyKind = "partial_mask"
	// StrategyTokenize replaces the value with a stable session token.
	StrategyTokenize StrategyKind = "tokenize"
	// StrategyHash replaces the value with a keyed hash.
	StrategyHash StrategyKind = "hash"
	// StrategyRemove deletes the value.
	StrategyRemove StrategyKind = "remove"
	// StrategyCustom delegates to a caller-supplied transform.
	StrategyCustom StrategyKind = "custom"
)

// Transform is a caller-supplied replacement function for StrategyCustom.
type Transform func(value string, cat category.Category) (string, error)

// Rule configures the strategy for one category subtree.
type Rule struct {
	Strategy StrategyKind

	// MaskChar is the masking character. Zero means '*'.
	MaskChar rune

	// Placeholder switches full masking to a "[REDACTED:<CATEGORY>]"
	// marker instead of a character run.
	Placeholder bool

	// KeepPrefix and KeepSuffix are the rune counts partial masking
	// retains at each end.
	KeepPrefix int
	KeepSuffix int

	// MinMaskedFraction is the minimum share of runes partial masking
	// must cover. Zero means the default of 0.5. Kept edges shrink until
	// the floor is met.
	MinMaskedFraction float64

	// Transform implements StrategyCustom.
	Transform Transform
}

// Policy maps categories to rules. Lookup walks leaf, then group, then the
// policy default, so one group rule covers every leaf beneath it.
type Policy struct {
	rules       map[category.Category]Rule
	defaultRule Rule
}

// NewPolicy creates a policy whose default strategy is a full mask.
func NewPolicy() *Policy {
	return &Policy{
		rules:       make(map[category.Category]Rule),
		defaultRule: Rule{Strategy: StrategyMask},
	}
}

// SetDefault replaces the fallback rule applied when no category rule
// matches.
func (p *Policy) SetDefault(r Rule) *Policy {
	p.defaultRule = r
	return p
}

// Set assigns a rule to a category. Group categories cover all their
// leaves unless a leaf sets its own rule.
func (p *Policy) Set(c category.Category, r Rule) *Policy {
	p.rules[c] = r
	return p
}

// RuleFor resolves the rule for a category through tree inheritance.
func (p *Policy) RuleFor(c category.Category) Rule {
	if r, ok := p.rules[c]; ok {
		return r
	}
	if r, ok := p.rules[c.Group()]; ok {
		return r
	}
	return p.defaultRule
}

// Validate checks the policy against the session keys before any content
// is processed. A hash rule without a hash key is a session_key_missing
// error; a custom rule without a transform is invalid.
func (p *Policy) Validate(hasHashKey bool) error {
	check := func(c string, r Rule) error {
		switch r.Strategy {
		case StrategyMask, StrategyPartialMask, StrategyTokenize, StrategyRemove:
		case StrategyHash:
			if !hasHashKey {
				return core.NewError(core.ErrSessionKeyMissing, "redaction",
					fmt.Sprintf("hash strategy for %q requires a configured hash key", c))
			}
		case StrategyCustom:
			if r.Transform == nil {
				return core.NewError(core.ErrInvalidConfig, "redaction",
					fmt.Sprintf("custom strategy for %q has no transform", c))
			}
		default:
			return core.NewError(core.ErrInvalidConfig, "redaction",
				fmt.Sprintf("unknown strategy %q for %q", r.Strategy, c))
		}
		return nil
	}

	if err := check("default", p.defaultRule); err != nil {
		return err
	}
	for c, r := range p.rules {
		if err := check(string(c), r); err != nil {
			return err
		}
	}
	return nil
}
