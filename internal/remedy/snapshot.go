package remedy

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// snapshotHeaderSize is one flag byte plus an 8-byte uncompressed length.
const snapshotHeaderSize = 9

// snapshotHashLen is the hex-encoded path hash length in snapshot filenames.
const snapshotHashLen = 16

// Snapshot flag values.
const (
	snapshotRaw        = byte(0)
	snapshotCompressed = byte(1)
)

// ErrSnapshotCorrupt indicates a snapshot file is truncated or undecodable.
var ErrSnapshotCorrupt = errors.New("snapshot corrupt")

// SnapshotStore persists pre-transform file content so an interrupted write
// sequence can be recovered. Snapshots are LZ4 block compressed.
type SnapshotStore struct {
	dir string
}

// NewSnapshotStore creates a store rooted at dir. The directory is created
// on first save.
func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{dir: dir}
}

// Save writes the snapshot for a root-relative path. Incompressible content
// is stored raw; the header flag records which form was used.
func (s *SnapshotStore) Save(rel string, data []byte) error {
	mkdirErr := os.MkdirAll(s.dir, 0o755)
	if mkdirErr != nil {
		return fmt.Errorf("create snapshot dir: %w", mkdirErr)
	}

	bound := lz4.CompressBlockBound(len(data))
	compressed := make([]byte, bound)

	written, compressErr := lz4.CompressBlock(data, compressed, nil)
	if compressErr != nil {
		return fmt.Errorf("compress snapshot: %w", compressErr)
	}

	flag := snapshotCompressed
	payload := compressed[:written]

	if written == 0 || written >= len(data) {
		flag = snapshotRaw
		payload = data
	}

	out := make([]byte, snapshotHeaderSize+len(payload))
	out[0] = flag
	binary.LittleEndian.PutUint64(out[1:snapshotHeaderSize], uint64(len(data)))
	copy(out[snapshotHeaderSize:], payload)

	writeErr := os.WriteFile(s.path(rel), out, 0o644)
	if writeErr != nil {
		return fmt.Errorf("write snapshot: %w", writeErr)
	}

	return nil
}

// Restore returns the snapshot content for a root-relative path.
func (s *SnapshotStore) Restore(rel string) ([]byte, error) {
	raw, readErr := os.ReadFile(s.path(rel))
	if readErr != nil {
		return nil, fmt.Errorf("read snapshot: %w", readErr)
	}

	if len(raw) < snapshotHeaderSize {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotCorrupt, rel)
	}

	size := binary.LittleEndian.Uint64(raw[1:snapshotHeaderSize])
	payload := raw[snapshotHeaderSize:]

	if raw[0] == snapshotRaw {
		if uint64(len(payload)) != size {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotCorrupt, rel)
		}

		return payload, nil
	}

	data := make([]byte, size)

	n, decompressErr := lz4.UncompressBlock(payload, data)
	if decompressErr != nil || uint64(n) != size {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotCorrupt, rel)
	}

	return data, nil
}

// path derives the snapshot filename: readable base plus a path hash so
// files with equal names in different directories cannot collide.
func (s *SnapshotStore) path(rel string) string {
	sum := sha256.Sum256([]byte(filepath.ToSlash(rel)))
	hash := hex.EncodeToString(sum[:])[:snapshotHashLen]

	base := strings.ReplaceAll(filepath.Base(rel), string(filepath.Separator), "_")

	return filepath.Join(s.dir, base+"-"+hash+".snap")
}
