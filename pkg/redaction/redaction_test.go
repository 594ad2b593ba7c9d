package redaction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvisycom/core/pkg/category"
	"github.com/nvisycom/core/pkg/core"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(nil, nil)
	require.NoError(t, err)
	return s
}

func TestPolicyInheritance(t *testing.T) {
	p := NewPolicy().
		Set(category.GroupFinancial, Rule{Strategy: StrategyTokenize}).
		Set(category.CreditCard, Rule{Strategy: StrategyPartialMask, KeepSuffix: 4})

	assert.Equal(t, StrategyPartialMask, p.RuleFor(category.CreditCard).Strategy, "leaf rule wins")
	assert.Equal(t, StrategyTokenize, p.RuleFor(category.IBAN).Strategy, "group rule covers other leaves")
	assert.Equal(t, StrategyMask, p.RuleFor(category.Email).Strategy, "default is full mask")
}

func TestPolicyValidateHashWithoutKey(t *testing.T) {
	p := NewPolicy().Set(category.SSN, Rule{Strategy: StrategyHash})

	err := p.Validate(false)
	require.Error(t, err)
	assert.Equal(t, core.ErrSessionKeyMissing, core.KindOf(err))

	assert.NoError(t, p.Validate(true))
}

func TestPolicyValidateCustomWithoutTransform(t *testing.T) {
	p := NewPolicy().Set(category.Email, Rule{Strategy: StrategyCustom})
	err := p.Validate(true)
	require.Error(t, err)
	assert.Equal(t, core.ErrInvalidConfig, core.KindOf(err))
}

func TestFullMask(t *testing.T) {
	out, action, err := Apply(Rule{Strategy: StrategyMask}, "secret", category.Email, nil)
	require.NoError(t, err)
	assert.Equal(t, "******", out)
	assert.Equal(t, "mask", action)

	// Rune length, not byte length.
	out, _, err = Apply(Rule{Strategy: StrategyMask}, "naïve", category.Email, nil)
	require.NoError(t, err)
	assert.Equal(t, "*****", out)

	out, _, err = Apply(Rule{Strategy: StrategyMask, Placeholder: true}, "123-45-6789", category.SSN, nil)
	require.NoError(t, err)
	assert.Equal(t, "[REDACTED:SSN]", out)
}

func TestPartialMaskEmail(t *testing.T) {
	out, _, err := Apply(Rule{Strategy: StrategyPartialMask}, "jane.doe@example.com", category.Email, nil)
	require.NoError(t, err)
	assert.Equal(t, "j***@example.com", out)
}

func TestPartialMaskKeepsEdges(t *testing.T) {
	out, _, err := Apply(Rule{Strategy: StrategyPartialMask, KeepPrefix: 2, KeepSuffix: 4},
		"4111111111111111", category.CreditCard, nil)
	require.NoError(t, err)
	assert.Equal(t, "41**********1111", out)
}

func TestPartialMaskEnforcesFloor(t *testing.T) {
	// Keeping 3+3 of 8 runes would mask only a quarter; the suffix must
	// shrink until at least half is masked.
	out, _, err := Apply(Rule{Strategy: StrategyPartialMask, KeepPrefix: 3, KeepSuffix: 3},
		"abcdefgh", category.Username, nil)
	require.NoError(t, err)
	masked := strings.Count(out, "*")
	assert.GreaterOrEqual(t, masked, 4, "output %q masks too little", out)
	assert.Len(t, out, 8)
	assert.True(t, strings.HasPrefix(out, "abc"))
}

func TestTokenizeStableWithinSession(t *testing.T) {
	s := newSession(t)

	tok1, action, err := Apply(Rule{Strategy: StrategyTokenize}, "jane@example.com", category.Email, s)
	require.NoError(t, err)
	assert.Equal(t, "tokenize", action)
	assert.True(t, strings.HasPrefix(tok1, "TKN-EMAIL-"), "token = %q", tok1)

	tok2, _, err := Apply(Rule{Strategy: StrategyTokenize}, "jane@example.com", category.Email, s)
	require.NoError(t, err)
	assert.Equal(t, tok1, tok2, "same value must reuse its token")

	tok3, _, err := Apply(Rule{Strategy: StrategyTokenize}, "bob@example.com", category.Email, s)
	require.NoError(t, err)
	assert.NotEqual(t, tok1, tok3, "distinct values need distinct tokens")

	assert.Equal(t, 2, s.TokenCount())
}

func TestTokenizeKeyedDeterminism(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	s1, err := NewSession(key, nil)
	require.NoError(t, err)
	s2, err := NewSession(key, nil)
	require.NoError(t, err)

	t1, err := s1.Token("SSN", "123-45-6789")
	require.NoError(t, err)
	t2, err := s2.Token("SSN", "123-45-6789")
	require.NoError(t, err)
	assert.Equal(t, t1, t2, "same key must fingerprint identically across sessions")

	// A different key changes the fingerprint.
	s3, err := NewSession([]byte("another-key-entirely-0000000000!"), nil)
	require.NoError(t, err)
	t3, err := s3.Token("SSN", "123-45-6789")
	require.NoError(t, err)
	assert.NotEqual(t, t1, t3)
}

func TestHashFormatAndKeyRequirement(t *testing.T) {
	s, err := NewSession(nil, []byte("hash-key"))
	require.NoError(t, err)

	h, action, err := Apply(Rule{Strategy: StrategyHash}, "value", category.SSN, s)
	require.NoError(t, err)
	assert.Equal(t, "hash", action)
	assert.Regexp(t, `^HSH-[0-9a-f]{16}$`, h)

	h2, _, err := Apply(Rule{Strategy: StrategyHash}, "value", category.SSN, s)
	require.NoError(t, err)
	assert.Equal(t, h, h2)

	noKey := newSession(t)
	_, _, err = Apply(Rule{Strategy: StrategyHash}, "value", category.SSN, noKey)
	require.Error(t, err)
	assert.Equal(t, core.ErrSessionKeyMissing, core.KindOf(err))
}

func TestRemoveAndCustom(t *testing.T) {
	out, action, err := Apply(Rule{Strategy: StrategyRemove}, "anything", category.Email, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, "remove", action)

	upper := func(v string, _ category.Category) (string, error) {
		return "<" + strings.ToUpper(v) + ">", nil
	}
	out, action, err = Apply(Rule{Strategy: StrategyCustom, Transform: upper}, "x", category.Email, nil)
	require.NoError(t, err)
	assert.Equal(t, "<X>", out)
	assert.Equal(t, "custom", action)
}

func TestNamespaceFallback(t *testing.T) {
	assert.Equal(t, "CC", Namespace(category.CreditCard))
	assert.Equal(t, "GEN", Namespace(category.Geohash))
}
