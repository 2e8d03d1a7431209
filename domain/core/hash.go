package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Short returns a 12-character prefix suitable for log lines
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// FileHash identifies the content of one uploaded file
type FileHash Hash

// NewFileHash hashes uploaded file content
func NewFileHash(data []byte) FileHash { return FileHash(NewHash(data)) }

func (h FileHash) String() string { return Hash(h).String() }
func (h FileHash) Short() string  { return Hash(h).Short() }
