package detector

// DefaultRegistry builds a registry with all built-in matchers in their
// canonical order. The order is part of the engine's determinism contract:
// it is the final tie-break when overlapping matches are otherwise equal.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, m := range []Matcher{
		// Checksum-validated formats first.
		NewCreditCardMatcher(),
		NewSSNMatcher(),
		NewIBANMatcher(),
		NewRoutingNumberMatcher(),
		NewIMEIMatcher(),
		NewVINMatcher(),
		NewMedicareMBIMatcher(),
		NewEthereumAddressMatcher(),

		// Distinctive formats.
		NewEmailMatcher(),
		NewPEMPrivateKeyMatcher(),
		NewJWTMatcher(),
		NewAWSAccessKeyMatcher(),
		NewURLCredentialsMatcher(),
		NewBitcoinAddressMatcher(),
		NewIPv4Matcher(),
		NewIPv6Matcher(),
		NewMACAddressMatcher(),
		NewGPSMatcher(),

		// Context-gated and fuzzier formats last.
		NewPhoneMatcher(),
		NewStreetAddressMatcher(),
		NewDateOfBirthMatcher(),
		NewPassportMatcher(),
		NewDriversLicenseMatcher(),
		NewEINMatcher(),
		NewBankAccountMatcher(),
		NewSWIFTMatcher(),
		NewAPIKeyMatcher(),
	} {
		// Built-in names are unique; registration cannot fail here.
		if err := r.Register(m); err != nil {
			panic(err)
		}
	}
	return r
}
