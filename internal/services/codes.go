package services

import (
	"crypto/rand"
)

// ticketCodeCharset omits 0/O/1/I so codes survive being read aloud or
// typed from a printout.
const ticketCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// TicketCodeLength is the fixed length of the human-shareable ticket code.
const TicketCodeLength = 12

// GenerateTicketCode returns a random fixed-length code. Uniqueness is
// enforced by the tickets.code unique index; callers retry on collision.
func GenerateTicketCode() (string, error) {
	buf := make([]byte, TicketCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = ticketCodeCharset[int(buf[i])%len(ticketCodeCharset)]
	}
	return string(buf), nil
}
