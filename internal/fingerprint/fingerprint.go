// Package fingerprint computes content digests used as document
// identity keys. Files are hashed in fixed-size chunks so memory use
// stays bounded regardless of file size.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// chunkSize is the read granularity for streamed hashing.
const chunkSize = 8192

// File returns the hex sha256 digest of the file's bytes.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return hash(f)
}

// Reader returns the hex sha256 digest of everything read from r.
func Reader(r io.Reader) (string, error) {
	return hash(r)
}

func hash(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
