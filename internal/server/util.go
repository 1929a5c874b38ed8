package server

import "crypto/rand"

const gameCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func newGameCode() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "AAAAAA"
	}
	for i := range buf {
		buf[i] = gameCodeAlphabet[int(buf[i])%len(gameCodeAlphabet)]
	}
	return string(buf)
}
