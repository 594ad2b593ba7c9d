package detector

import (
	"math"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// luhn validates a digit string with the Luhn mod-10 checksum, used by
// payment card numbers and IMEIs.
func luhn(digits string) bool {
	if len(digits) < 2 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ibanMod97 validates an IBAN per ISO 7064: move the first four characters
// to the end, convert letters to numbers, and check the remainder mod 97.
func ibanMod97(iban string) bool {
	if len(iban) < 15 || len(iban) > 34 {
		return false
	}
	rearranged := iban[4:] + iban[:4]
	rem := 0
	for i := 0; i < len(rearranged); i++ {
		c := rearranged[i]
		switch {
		case c >= '0' && c <= '9':
			rem = (rem*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			v := int(c-'A') + 10
			rem = (rem*100 + v) % 97
		default:
			return false
		}
	}
	return rem == 1
}

// abaChecksum validates a 9-digit ABA routing number.
func abaChecksum(digits string) bool {
	if len(digits) != 9 {
		return false
	}
	weights := [9]int{3, 7, 1, 3, 7, 1, 3, 7, 1}
	sum := 0
	for i := 0; i < 9; i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += weights[i] * int(c-'0')
	}
	return sum != 0 && sum%10 == 0
}

// validSSN rejects the never-issued SSN ranges: area 000, 666 or 9xx,
// group 00, serial 0000.
func validSSN(digits string) bool {
	if len(digits) != 9 {
		return false
	}
	area := digits[:3]
	if area == "000" || area == "666" || area[0] == '9' {
		return false
	}
	if digits[3:5] == "00" || digits[5:] == "0000" {
		return false
	}
	return true
}

// vinTransliteration maps VIN characters to check-digit values. I, O and Q
// are never used in a VIN.
var vinTransliteration = map[byte]int{
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 6, 'G': 7, 'H': 8,
	'J': 1, 'K': 2, 'L': 3, 'M': 4, 'N': 5, 'P': 7, 'R': 9,
	'S': 2, 'T': 3, 'U': 4, 'V': 5, 'W': 6, 'X': 7, 'Y': 8, 'Z': 9,
	'0': 0, '1': 1, '2': 2, '3': 3, '4': 4, '5': 5, '6': 6, '7': 7, '8': 8, '9': 9,
}

var vinWeights = [17]int{8, 7, 6, 5, 4, 3, 2, 10, 0, 9, 8, 7, 6, 5, 4, 3, 2}

// vinCheckDigit validates position 9 of a 17-character VIN.
func vinCheckDigit(vin string) bool {
	if len(vin) != 17 {
		return false
	}
	vin = strings.ToUpper(vin)
	sum := 0
	for i := 0; i < 17; i++ {
		v, ok := vinTransliteration[vin[i]]
		if !ok {
			return false
		}
		sum += v * vinWeights[i]
	}
	rem := sum % 11
	check := byte('0' + rem)
	if rem == 10 {
		check = 'X'
	}
	return vin[8] == check
}

// validEthereumAddress accepts a 0x-prefixed address. Mixed-case addresses
// must carry a valid EIP-55 checksum; single-case addresses have no
// checksum to verify and pass on format alone.
func validEthereumAddress(addr string) bool {
	if !ethcommon.IsHexAddress(addr) {
		return false
	}
	body := strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X")
	hasUpper := strings.ContainsAny(body, "ABCDEF")
	hasLower := strings.ContainsAny(body, "abcdef")
	if !hasUpper || !hasLower {
		return true
	}
	return ethcommon.HexToAddress(addr).Hex() == "0x"+body
}

// shannonEntropy returns the per-byte entropy of a string in bits. Generic
// secret detection uses it to separate random tokens from prose.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	var freq [256]int
	for i := 0; i < len(s); i++ {
		freq[s[i]]++
	}
	entropy := 0.0
	n := float64(len(s))
	for _, c := range freq {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// validUSPhone rejects NANP numbers whose area or exchange code starts
// with 0 or 1.
func validUSPhone(digits string) bool {
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return false
	}
	return digits[0] >= '2' && digits[3] >= '2'
}
