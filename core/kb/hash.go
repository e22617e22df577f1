package kb

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/zeebo/blake3"
)

// jsonMarshal is a variable to allow testing of marshal errors.
var jsonMarshal = json.Marshal

// Digest carries both hashes of a serialized record.
type Digest struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
}

// HashBytes computes the SHA-256 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Blake3Bytes computes the BLAKE3-256 hash of bytes as a hex string.
func Blake3Bytes(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Fingerprint serializes v to JSON and hashes the bytes. Records with identical
// ids, offsets and text produce identical fingerprints.
func Fingerprint(v any) (Digest, error) {
	data, err := jsonMarshal(v)
	if err != nil {
		return Digest{}, err
	}
	return Digest{SHA256: HashBytes(data), BLAKE3: Blake3Bytes(data)}, nil
}

// Fingerprinter accumulates a running BLAKE3 digest over a stream of records,
// one JSON document per record in emission order.
type Fingerprinter struct {
	h     *blake3.Hasher
	count int
}

// NewFingerprinter returns an empty running fingerprint.
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{h: blake3.New()}
}

// Add appends one record to the digest.
func (f *Fingerprinter) Add(v any) error {
	data, err := jsonMarshal(v)
	if err != nil {
		return err
	}
	f.h.Write(data)
	f.h.Write([]byte{'\n'})
	f.count++
	return nil
}

// Count returns the number of records added.
func (f *Fingerprinter) Count() int { return f.count }

// Sum returns the hex digest of everything added so far.
func (f *Fingerprinter) Sum() string {
	return hex.EncodeToString(f.h.Sum(nil))
}
