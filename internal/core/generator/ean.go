package generator

import (
	"math/rand/v2"

	"github.com/niksmo/catalog-seed/internal/core/domain"
)

const eanPayloadLen = domain.EANLen - 1

// NewEAN returns a 13-digit EAN code with a valid check digit.
func NewEAN(r *rand.Rand) string {
	var digits [domain.EANLen]byte
	for i := range eanPayloadLen {
		digits[i] = byte(r.IntN(10))
	}
	digits[eanPayloadLen] = checkDigit(digits[:eanPayloadLen])

	for i := range digits {
		digits[i] += '0'
	}
	return string(digits[:])
}

// ValidEAN reports whether code is 13 digits long
// and its last digit matches the checksum of the first 12.
func ValidEAN(code string) bool {
	if len(code) != domain.EANLen {
		return false
	}

	var digits [domain.EANLen]byte
	for i := range len(code) {
		c := code[i]
		if c < '0' || c > '9' {
			return false
		}
		digits[i] = c - '0'
	}
	return checkDigit(digits[:eanPayloadLen]) == digits[eanPayloadLen]
}

// checkDigit weights even positions by 1 and odd positions by 3 (0-indexed).
func checkDigit(payload []byte) byte {
	var odd, even int
	for i, d := range payload {
		if i%2 == 0 {
			odd += int(d)
		} else {
			even += int(d)
		}
	}
	return byte((10 - (odd+3*even)%10) % 10)
}
