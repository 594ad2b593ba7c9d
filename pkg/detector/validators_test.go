package detector

import "testing"

func TestLuhn(t *testing.T) {
	valid := []string{"4111111111111111", "5500005555555559", "490154203237518"}
	for _, v := range valid {
		if !luhn(v) {
			t.Errorf("luhn(%q) = false, want true", v)
		}
	}
	invalid := []string{"4111111111111112", "1234567890123456", "", "41x1111111111111"}
	for _, v := range invalid {
		if luhn(v) {
			t.Errorf("luhn(%q) = true, want false", v)
		}
	}
}

func TestIBANMod97(t *testing.T) {
	if !ibanMod97("GB82WEST12345698765432") {
		t.Error("known-good IBAN rejected")
	}
	if !ibanMod97("DE89370400440532013000") {
		t.Error("known-good IBAN rejected")
	}
	if ibanMod97("GB82WEST12345698765431") {
		t.Error("IBAN with bad check digits accepted")
	}
	if ibanMod97("GB82") {
		t.Error("too-short IBAN accepted")
	}
}

func TestABAChecksum(t *testing.T) {
	if !abaChecksum("021000021") {
		t.Error("known-good routing number rejected")
	}
	if !abaChecksum("011401533") {
		t.Error("known-good routing number rejected")
	}
	if abaChecksum("123456789") {
		t.Error("routing number with bad checksum accepted")
	}
	if abaChecksum("02100002") {
		t.Error("8-digit value accepted")
	}
}

func TestValidSSN(t *testing.T) {
	if !validSSN("123456789") {
		t.Error("valid SSN rejected")
	}
	for _, bad := range []string{"000123456", "666123456", "923456789", "123006789", "123450000"} {
		if validSSN(bad) {
			t.Errorf("never-issued SSN %q accepted", bad)
		}
	}
}

func TestVINCheckDigit(t *testing.T) {
	if !vinCheckDigit("1HGBH41JXMN109186") {
		t.Error("known-good VIN rejected")
	}
	if vinCheckDigit("1HGBH41J0MN109186") {
		t.Error("VIN with wrong check digit accepted")
	}
	if vinCheckDigit("1HGBH41JXMN10918") {
		t.Error("16-character VIN accepted")
	}
	if vinCheckDigit("IHGBH41JXMN109186") {
		t.Error("VIN containing I accepted")
	}
}

func TestEthereumAddressValidation(t *testing.T) {
	// All-lowercase has no checksum to verify.
	if !validEthereumAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed") {
		t.Error("lowercase address rejected")
	}
	// Correct EIP-55 checksum.
	if !validEthereumAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed") {
		t.Error("checksummed address rejected")
	}
	// One flipped case breaks the checksum.
	if validEthereumAddress("0x5Aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed") {
		t.Error("address with broken checksum accepted")
	}
	if validEthereumAddress("0x5aaeb") {
		t.Error("short address accepted")
	}
}

func TestShannonEntropy(t *testing.T) {
	if e := shannonEntropy("aaaaaaaaaaaa"); e != 0 {
		t.Errorf("uniform string entropy = %f, want 0", e)
	}
	if e := shannonEntropy("Xq7PzR2mK9vL4tN8wY3cF6hJ"); e < 3.5 {
		t.Errorf("random-looking string entropy = %f, want >= 3.5", e)
	}
	if e := shannonEntropy("secretsecretsecretsecret"); e >= 3.5 {
		t.Errorf("repetitive string entropy = %f, unexpectedly high", e)
	}
}

func TestValidUSPhone(t *testing.T) {
	if !validUSPhone("4155552671") {
		t.Error("valid number rejected")
	}
	if !validUSPhone("14155552671") {
		t.Error("valid 1-prefixed number rejected")
	}
	if validUSPhone("0155552671") {
		t.Error("area code starting with 0 accepted")
	}
	if validUSPhone("4151552671") {
		t.Error("exchange starting with 1 accepted")
	}
}
