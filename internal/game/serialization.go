package game

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ChecksumVersion is bumped whenever the canonical form of a view changes.
const ChecksumVersion = 1

// Checksum hashes the canonical form of a match view. The match id is left
// out, so two matches played from the same seed with the same commands
// produce the same checksums.
func Checksum(v MatchView) (string, error) {
	v.ID = ""
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode view: %w", err)
	}
	sum := sha256.Sum256(append([]byte{ChecksumVersion}, data...))
	return hex.EncodeToString(sum[:]), nil
}

// VerifyChecksum reports whether v still hashes to expected.
func VerifyChecksum(v MatchView, expected string) (bool, error) {
	got, err := Checksum(v)
	if err != nil {
		return false, err
	}
	return got == expected, nil
}
