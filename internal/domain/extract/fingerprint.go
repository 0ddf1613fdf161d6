package extract

import (
	"fmt"
	"unicode/utf16"
)

const (
	fingerprintSeed       int32 = 31
	fingerprintMultiplier int32 = 17

	// Only the first few children of every node take part in the fingerprint.
	fingerprintFanout = 5
)

// Fingerprint computes a bounded, order-sensitive content hash of the tree.
// Changes outside the sampled children go unnoticed and collisions are possible.
func Fingerprint(n Node) (int32, error) {
	info, err := n.Info()
	if err != nil {
		return 0, fmt.Errorf("fingerprint: %w", err)
	}

	count := n.ChildCount()
	acc := fingerprintSeed
	acc = acc*fingerprintMultiplier + StringHash(info.Text)
	acc = acc*fingerprintMultiplier + StringHash(info.Description)
	acc = acc*fingerprintMultiplier + int32(count)

	err = forEachChild(n, min(count, fingerprintFanout), func(child Node) error {
		h, err := Fingerprint(child)
		if err != nil {
			return err
		}
		acc = acc*fingerprintMultiplier + h
		return nil
	})
	if err != nil {
		return 0, err
	}
	return acc, nil
}

// StringHash is the 32-bit polynomial string hash over UTF-16 code units
// (s[0]*31^(n-1) + ... + s[n-1]), wrapping on overflow. The empty string hashes to 0.
func StringHash(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(c)
	}
	return h
}
