// Package ids generates and validates the 24-hex-character identifiers used
// for every stored record.
package ids

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// Length is the number of hex characters in a record identifier.
const Length = 24

// New returns a fresh identifier: a big-endian unix-seconds prefix followed
// by eight random bytes, hex encoded. The timestamp prefix keeps freshly
// generated ids roughly sortable by creation time.
func New() string {
	var buf [12]byte
	binary.BigEndian.PutUint32(buf[:4], uint32(time.Now().UTC().Unix()))
	if _, err := rand.Read(buf[4:]); err != nil {
		// crypto/rand never fails on supported platforms.
		panic("ids: read random bytes: " + err.Error())
	}
	return hex.EncodeToString(buf[:])
}

// Valid reports whether s is a well-formed record identifier.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
