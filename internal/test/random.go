package test

import (
	"math/rand/v2"
	"strings"
)

const (
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	upperDigits  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RandomASCIIString returns an alphanumeric string of length in [minLen, maxLen].
func RandomASCIIString(minLen, maxLen int) string {
	minLen = max(minLen, 1)
	maxLen = max(maxLen, minLen)
	return randomFrom(alphanumeric, minLen+rand.IntN(maxLen-minLen+1))
}

// RandomVoucherCode returns an upper-case code such as "SAVE-7Q2K".
func RandomVoucherCode(prefix string) string {
	return strings.ToUpper(prefix) + "-" + randomFrom(upperDigits, 4)
}

func randomFrom(alphabet string, n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(alphabet[rand.IntN(len(alphabet))])
	}
	return b.String()
}
