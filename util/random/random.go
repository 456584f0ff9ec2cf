// Package random generates random strings for secrets.
package random

import (
	"crypto/rand"
	"math/big"
)

var allSeq [62]rune

func init() {
	n := 0
	for i := 0; i < 10; i++ {
		allSeq[n] = rune('0' + i)
		n++
	}
	for i := 0; i < 26; i++ {
		allSeq[n] = rune('a' + i)
		allSeq[n+26] = rune('A' + i)
		n++
	}
}

// Seq generates a random alphanumeric string of length n.
func Seq(n int) string {
	runes := make([]rune, n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(allSeq))))
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		runes[i] = allSeq[idx.Int64()]
	}
	return string(runes)
}
