package common

import (
	"crypto/rand"
	"math/big"
)

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomSuffix returns a random string of length n drawn from [a-z0-9].
// It returns an error if the random number generator fails.
func RandomSuffix(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}

	b := make([]byte, n)
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = suffixAlphabet[idx.Int64()]
	}

	return string(b), nil
}
