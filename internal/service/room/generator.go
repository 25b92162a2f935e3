package room

import "math/rand/v2"

const (
	roomIdAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomIdLength   = 8
)

type generator struct {
	alphabet string
}

func newGenerator(alphabet string) generator {
	return generator{alphabet: alphabet}
}

func (g generator) GenerateRandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = g.alphabet[rand.IntN(len(g.alphabet))]
	}

	return string(b)
}
