// Package uniuri generates cryptographically secure random strings from a
// restricted alphabet, suitable for invite codes and other short identifiers.
package uniuri

import "crypto/rand"

// StdLen is a standard length of uniuri string to achieve ~95 bits of entropy.
const StdLen = 16

// StdChars is a set of standard characters allowed in uniuri string.
var StdChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

// New returns a new random string of the standard length, consisting of
// standard characters.
func New() string {
	return NewLen(StdLen)
}

// NewLen returns a new random string of the provided length, consisting of
// standard characters.
func NewLen(length int) string {
	return NewLenChars(length, StdChars)
}

// NewLenChars returns a new random string of the provided length, consisting
// of the provided byte slice of allowed characters (maximum 256).
// Bytes outside the unbiased range are rejected and redrawn so every
// character is picked uniformly.
func NewLenChars(length int, chars []byte) string {
	if length == 0 {
		return ""
	}

	clen := len(chars)
	if clen < 2 || clen > 256 {
		panic("uniuri: wrong charset length for NewLenChars")
	}

	// Largest byte value that keeps the modulo unbiased.
	maxrb := 255 - (256 % clen)

	buf := make([]byte, length+length/2)
	out := make([]byte, length)

	var i int

	for {
		if _, err := rand.Read(buf); err != nil {
			panic("uniuri: error reading random bytes: " + err.Error())
		}

		for _, rb := range buf {
			c := int(rb)
			if c > maxrb {
				// Skip this number to avoid modulo bias.
				continue
			}

			out[i] = chars[c%clen]
			i++

			if i == length {
				return string(out)
			}
		}
	}
}
