// utils/credentials.go - generated usernames and passwords for admin-created players
package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"

	"ingresosgo/questions"
)

const (
	lowercase = "abcdefghijklmnopqrstuvwxyz"
	uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits    = "0123456789"
	symbols   = "@#$%&*"
)

func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return int(v.Int64())
}

func pick(set string) byte {
	return set[randInt(len(set))]
}

// GeneratePassword returns a password of length (at least 4) with one lowercase
// letter, one uppercase letter, one digit and one symbol.
func GeneratePassword(length int) string {
	length = max(length, 4)
	all := lowercase + uppercase + digits + symbols
	b := []byte{pick(lowercase), pick(uppercase), pick(digits), pick(symbols)}
	for len(b) < length {
		b = append(b, pick(all))
	}
	for i := len(b) - 1; i > 0; i-- {
		j := randInt(i + 1)
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// UsernameBase folds a display name into [a-z0-9]. "José Pérez" becomes "joseperez".
func UsernameBase(name string) string {
	var sb strings.Builder
	for _, r := range questions.Fold(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "usuario"
	}
	return sb.String()
}

// GenerateUsername appends a random 0-999 suffix to the folded name.
func GenerateUsername(name string) string {
	return UsernameBase(name) + strconv.Itoa(randInt(1000))
}
