package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// GenerateNumericCode returns a random code of exactly `digits` digits with
// a non-zero leading digit, e.g. 100000-999999 for six digits.
func GenerateNumericCode(digits int) (string, error) {
	if digits < 1 {
		digits = 6
	}
	low := big.NewInt(1)
	for i := 1; i < digits; i++ {
		low.Mul(low, big.NewInt(10))
	}
	span := new(big.Int).Mul(low, big.NewInt(9))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return n.Add(n, low).String(), nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
