package core

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// sourceHashPrefixLen is the number of hex characters kept from the full
// SHA-256 digest for audit references.
const sourceHashPrefixLen = 12

// Hash represents a full cryptographic hash.
type Hash string

// SourceHash is the short hex prefix of a canonical content hash, used to
// tie every emitted contract back to the exact inputs it was compiled from.
type SourceHash string

// NewHash creates a new hash from data.
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation.
func (h Hash) String() string { return string(h) }

// IsEmpty checks if the hash is empty.
func (h Hash) IsEmpty() bool { return h == "" }

// String returns the string representation.
func (h SourceHash) String() string { return string(h) }

// IsEmpty checks if the source hash is empty.
func (h SourceHash) IsEmpty() bool { return h == "" }

// CanonicalJSON serializes v with recursively sorted object keys so the
// byte stream (and therefore any hash of it) is independent of map
// iteration order and of the key order of the original document.
func CanonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical serialization failed: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree interface{}
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("canonical re-decode failed: %w", err)
	}

	var buf bytes.Buffer
	if err := writeCanonical(&buf, tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v interface{}) error {
	switch t := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := writeCanonical(buf, t[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case []interface{}:
		buf.WriteByte('[')
		for i, elem := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case json.Number:
		buf.WriteString(string(t))
		return nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
}

// HashCanonical computes the short content hash of v over its canonical
// sorted-key serialization.
func HashCanonical(v interface{}) (SourceHash, error) {
	data, err := CanonicalJSON(v)
	if err != nil {
		return "", err
	}
	full := NewHash(data)
	return SourceHash(full[:sourceHashPrefixLen]), nil
}
