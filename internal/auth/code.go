package auth

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// biasLimit is the largest multiple of len(codeCharset) that fits in a byte.
// Bytes at or above it are rejected so the modulo mapping stays uniform.
const biasLimit = 256 - 256%len(codeCharset)

func charsetByte(b byte) (byte, bool) {
	if int(b) >= biasLimit {
		return 0, false
	}
	return codeCharset[int(b)%len(codeCharset)], true
}

// GenerateConfirmationCode returns a random code of the given length drawn
// uniformly from [A-Za-z0-9].
func GenerateConfirmationCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid confirmation code length %d", length)
	}
	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate confirmation code: %w", err)
		}
		for _, b := range buf {
			ch, ok := charsetByte(b)
			if !ok {
				continue
			}
			out = append(out, ch)
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// HashConfirmationCode returns the bcrypt hash stored on the user row. The
// plaintext code only ever leaves the process inside the email.
func HashConfirmationCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyConfirmationCode compares a supplied code against the stored hash.
func VerifyConfirmationCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
