// Package vfsarchive implements the flat, self-indexing VFS container:
// a sequentially scanned array of (path hash, size, payload) entries
// with a manifest entry, stored at a well-known hash, listing every
// real path in creation order.
package vfsarchive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/kyufie-go/hltool/binfmt"
	"github.com/kyufie-go/hltool/hlerr"
)

// ManifestPathHash is the path hash the manifest string table is always
// stored under, letting it be found without already knowing the archive
// layout.
const ManifestPathHash uint32 = 0xbc909d54

// Hash computes the archive's path hash: a DJB2-style 32-bit rolling
// hash over the path's ASCII bytes. Non-ASCII paths cannot be hashed by
// this algorithm (the original tool only ever stores ASCII archive
// paths); Hash rejects them with hlerr.ErrNonASCIIPath.
func Hash(path string) (uint32, error) {
	var acc uint32 = 0x1505
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c > 0x7f {
			return 0, fmt.Errorf("%w: %q", hlerr.ErrNonASCIIPath, path)
		}
		acc = acc + uint32(c) + (acc << 5)
	}
	return acc, nil
}

// Entry is one decoded archive slot: its path hash and the offset/size
// of its payload within the archive stream.
type Entry struct {
	Hash   uint32
	Offset int64
	Size   int64
}

// Index maps path hash to the entry describing where its payload lives.
type Index map[uint32]Entry

// scan sequentially walks every (hash, size, payload) entry in r,
// recording offsets without reading payload bytes, and invoking visit
// for each entry found. r must support Seek so payloads can be skipped
// without being read into memory.
func scan(r io.ReadSeeker, visit func(Entry) error) error {
	for {
		hdr, atEnd, err := binfmt.ReadExactLenient(r, 8)
		if atEnd {
			return nil
		}
		if err != nil {
			return err
		}
		hash := binLE32(hdr[0:4])
		size := binLE32(hdr[4:8])

		offset, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		if err := visit(Entry{Hash: hash, Offset: offset, Size: int64(size)}); err != nil {
			return err
		}
		if _, err := r.Seek(int64(size), io.SeekCurrent); err != nil {
			return fmt.Errorf("%w: seeking past entry payload: %v", hlerr.ErrTruncated, err)
		}
	}
}

func binLE32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// BuildIndex scans the whole archive and returns every entry keyed by
// its path hash. hlerr.ErrHashCollision is returned if two entries share
// a hash, since the format has no way to disambiguate them.
func BuildIndex(r io.ReadSeeker) (Index, error) {
	idx := make(Index)
	err := scan(r, func(e Entry) error {
		if _, dup := idx[e.Hash]; dup {
			return fmt.Errorf("%w: hash 0x%08x", hlerr.ErrHashCollision, e.Hash)
		}
		idx[e.Hash] = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// ReadManifest decodes the archive's manifest string table: a u32 count
// followed by that many NUL-terminated ASCII strings, the paths of every
// real file the archive holds (in the order they were written).
func ReadManifest(r io.ReadSeeker, idx Index) ([]string, error) {
	entry, ok := idx[ManifestPathHash]
	if !ok {
		return nil, fmt.Errorf("%w: manifest entry not found", hlerr.ErrManifestMismatch)
	}
	if _, err := r.Seek(entry.Offset, io.SeekStart); err != nil {
		return nil, err
	}
	payload, err := binfmt.ReadExact(r, int(entry.Size))
	if err != nil {
		return nil, err
	}
	return decodeManifest(payload)
}

func decodeManifest(payload []byte) ([]string, error) {
	buf := bytes.NewReader(payload)
	count, err := binfmt.ReadInt(buf, 32, binfmt.LittleEndian, false)
	if err != nil {
		return nil, fmt.Errorf("manifest count: %w", err)
	}
	out := make([]string, 0, count)
	for i := 0; i < int(count); i++ {
		var raw []byte
		for {
			b, err := binfmt.ReadExact(buf, 1)
			if err != nil {
				return nil, fmt.Errorf("manifest entry %d: %w", i, err)
			}
			if b[0] == 0 {
				break
			}
			raw = append(raw, b[0])
		}
		out = append(out, string(raw))
	}
	return out, nil
}

// ReadEntry returns the raw payload bytes for the file stored under
// path.
func ReadEntry(r io.ReadSeeker, idx Index, path string) ([]byte, error) {
	hash, err := Hash(path)
	if err != nil {
		return nil, err
	}
	entry, ok := idx[hash]
	if !ok {
		return nil, fmt.Errorf("%w: %q not found in archive", hlerr.ErrManifestMismatch, path)
	}
	if _, err := r.Seek(entry.Offset, io.SeekStart); err != nil {
		return nil, err
	}
	return binfmt.ReadExact(r, int(entry.Size))
}

// Writer appends (hash, size, payload) entries to an archive stream. It
// requires no seek capability: every entry is written once its full
// size is already known, matching the design's append-only stream
// model. The manifest must be written last, via WriteManifest, once
// every other path has been appended.
type Writer struct {
	w     io.Writer
	paths []string
	seen  map[uint32]string
}

// NewWriter returns a Writer appending entries to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, seen: make(map[uint32]string)}
}

// WriteFile appends one file's contents under path, recording path in
// the manifest written later by WriteManifest.
func (vw *Writer) WriteFile(path string, data []byte) error {
	hash, err := Hash(path)
	if err != nil {
		return err
	}
	if prior, dup := vw.seen[hash]; dup {
		return fmt.Errorf("%w: %q and %q both hash to 0x%08x", hlerr.ErrHashCollision, prior, path, hash)
	}
	vw.seen[hash] = path

	if err := vw.writeHeader(hash, len(data)); err != nil {
		return err
	}
	_, err = vw.w.Write(data)
	if err != nil {
		return err
	}
	vw.paths = append(vw.paths, path)
	return nil
}

// WriteManifest appends the manifest entry listing every path written
// so far, in the order WriteFile was called. It must be the last call
// made on vw.
func (vw *Writer) WriteManifest() error {
	var buf bytes.Buffer
	if err := binfmt.WriteInt(&buf, int64(len(vw.paths)), 32, binfmt.LittleEndian); err != nil {
		return err
	}
	for _, p := range vw.paths {
		if _, err := buf.WriteString(p); err != nil {
			return err
		}
		if err := buf.WriteByte(0); err != nil {
			return err
		}
	}
	if err := vw.writeHeader(ManifestPathHash, buf.Len()); err != nil {
		return err
	}
	_, err := vw.w.Write(buf.Bytes())
	return err
}

func (vw *Writer) writeHeader(hash uint32, size int) error {
	if err := binfmt.WriteInt(vw.w, int64(hash), 32, binfmt.LittleEndian); err != nil {
		return err
	}
	return binfmt.WriteInt(vw.w, int64(size), 32, binfmt.LittleEndian)
}
