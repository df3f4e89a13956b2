package astcore

import (
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint is the 256-bit content digest used for FileId and cache keys.
type Fingerprint [32]byte

func (f Fingerprint) String() string {
	return fmt.Sprintf("%x", [32]byte(f))
}

// FileId identifies a file by absolute path and content fingerprint.
type FileId struct {
	Path        string
	Fingerprint Fingerprint
}

// FingerprintBytes computes the content fingerprint of data.
func FingerprintBytes(data []byte) Fingerprint {
	return blake2b.Sum256(data)
}

// FingerprintFile reads path and computes its FileId.
func FingerprintFile(path string) (FileId, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileId{}, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return FileId{Path: path, Fingerprint: FingerprintBytes(data)}, data, nil
}
