package utils

import (
	"crypto/rand"
	"math/big"
)

// AuthCodeLength is the number of digits in an emailed verification code.
const AuthCodeLength = 6

var ten = big.NewInt(10)

// GenerateAuthCode returns AuthCodeLength random decimal digits.
func GenerateAuthCode() (string, error) {
	code := make([]byte, AuthCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}
