package document

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Fingerprint computes a streaming SHA-256 digest of the file's bytes and
// returns it as lowercase hex.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Key builds the composite dedup key. The filename is part of the key on
// purpose: identical bytes filed under a new name are re-ingested, trading
// storage for naming flexibility.
func Key(filename, digest string) string {
	return filename + ":" + digest
}
