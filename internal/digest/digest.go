// Package digest computes the content identity used for deduplication.
//
// A Digest is the lower-case hex SHA-256 of the exact file bytes. Names and
// paths never enter the hash, so a moved, renamed or copied file keeps its
// identity and is recognized as already published.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Size is the length of a Digest in hex characters.
const Size = sha256.Size * 2

// blockSize matches the read size used when hashing files.
const blockSize = 4096

// Digest is a fixed-length content token (SHA-256, hex encoded).
type Digest string

// Of computes the digest of data.
func Of(data []byte) Digest {
	sum := sha256.Sum256(data)
	return Digest(hex.EncodeToString(sum[:]))
}

// Reader computes the digest of everything read from r.
func Reader(r io.Reader) (Digest, error) {
	h := sha256.New()
	buf := make([]byte, blockSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("digest: read: %w", err)
	}
	return Digest(hex.EncodeToString(h.Sum(nil))), nil
}

// File computes the digest of the file at path.
func File(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	defer f.Close()

	d, err := Reader(f)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}
	return d, nil
}

// Parse validates s as a digest.
func Parse(s string) (Digest, error) {
	if len(s) != Size {
		return "", fmt.Errorf("digest: invalid length %d (want %d)", len(s), Size)
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", fmt.Errorf("digest: invalid hex: %w", err)
	}
	return Digest(s), nil
}

// String returns the hex form.
func (d Digest) String() string {
	return string(d)
}

// Short returns the first 12 hex characters for log and status output.
func (d Digest) Short() string {
	if len(d) <= 12 {
		return string(d)
	}
	return string(d[:12])
}

// CID renders the digest as a CIDv1 with the raw codec and a sha2-256
// multihash. The CID addresses the same bytes as the hex digest.
// Returns "" if d is not a valid digest.
func (d Digest) CID() string {
	raw, err := hex.DecodeString(string(d))
	if err != nil || len(raw) != sha256.Size {
		return ""
	}
	mh, err := multihash.Encode(raw, multihash.SHA2_256)
	if err != nil {
		return ""
	}
	return cid.NewCidV1(cid.Raw, multihash.Multihash(mh)).String()
}
