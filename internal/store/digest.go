package store

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

const digestChunkSize = 1 << 20 // 1 MiB

// FileDigest streams the file at path through SHA-256 in fixed-size chunks
// and returns the hex digest. This is the content identity used for
// deduplication; two imports of the same physical photo from different
// paths collapse to one logical record.
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", eris.Wrapf(err, "store: open %s for hashing", path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.CopyBuffer(h, f, make([]byte, digestChunkSize)); err != nil {
		return "", eris.Wrapf(err, "store: hash %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
