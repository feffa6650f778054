package xp

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
)

// PackCompression indicates the compression used for the pack content
// section.
type PackCompression uint8

const (
	PackCompNone PackCompression = 0
	PackCompZlib PackCompression = 1
	PackCompZstd PackCompression = 2
)

const (
	packMagicStr = "XPPACK"
	packVersion1 = 1
)

// PackEntry is a single image inside a pack. Stream holds the
// decompressed .xp byte stream, ready for Decode.
type PackEntry struct {
	Name   string
	Stream []byte
}

// Pack bundles many named REXPaint images into one blob. Tile and asset
// sets repeat whole images, so the container stores each distinct stream
// once and entries reference it by index.
type Pack struct {
	Entries []PackEntry
}

// BuildPack builds a pack from raw .xp file bytes keyed by name. Each
// file's gzip container is stripped; the image records themselves are
// carried verbatim and never re-encoded. Entries are ordered by name.
func BuildPack(files map[string][]byte) (*Pack, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("xp: no files to pack")
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	pack := &Pack{Entries: make([]PackEntry, 0, len(names))}
	for _, name := range names {
		stream, err := decompress(bytes.NewReader(files[name]))
		if err != nil {
			return nil, fmt.Errorf("xp: pack %q: %w", name, err)
		}
		pack.Entries = append(pack.Entries, PackEntry{Name: name, Stream: stream})
	}
	return pack, nil
}

// Image decodes the named entry.
func (p *Pack) Image(name string) (*Image, error) {
	e := p.entry(name)
	if e == nil {
		return nil, fmt.Errorf("xp: no pack entry %q", name)
	}
	return Decode(e.Stream)
}

// XPBytes returns the named entry as a standalone .xp file, gzip
// container restored.
func (p *Pack) XPBytes(name string) ([]byte, error) {
	e := p.entry(name)
	if e == nil {
		return nil, fmt.Errorf("xp: no pack entry %q", name)
	}
	return compress(e.Stream)
}

func (p *Pack) entry(name string) *PackEntry {
	for i := range p.Entries {
		if p.Entries[i].Name == name {
			return &p.Entries[i]
		}
	}
	return nil
}

// Marshal encodes the pack with the given content compression.
//
// Layout after the "XPPACK" magic, version byte and compression byte
// (all container integers little-endian):
//
//	[4 blob count] then per blob: [8 xxhash64][4 length][bytes]
//	[4 entry count] then per entry: [2 name length][name][4 blob index]
func (p *Pack) Marshal(comp PackCompression) ([]byte, error) {
	blobs, refs := dedupeStreams(p.Entries)

	var content bytes.Buffer
	_ = binary.Write(&content, binary.LittleEndian, uint32(len(blobs)))
	for _, b := range blobs {
		_ = binary.Write(&content, binary.LittleEndian, xxhash.Sum64(b))
		_ = binary.Write(&content, binary.LittleEndian, uint32(len(b)))
		_, _ = content.Write(b)
	}
	_ = binary.Write(&content, binary.LittleEndian, uint32(len(p.Entries)))
	for i, e := range p.Entries {
		nb := []byte(e.Name)
		if len(nb) > 0xFFFF {
			return nil, fmt.Errorf("xp: pack entry name too long: %s", e.Name)
		}
		_ = binary.Write(&content, binary.LittleEndian, uint16(len(nb)))
		_, _ = content.Write(nb)
		_ = binary.Write(&content, binary.LittleEndian, uint32(refs[i]))
	}

	var finalContent []byte
	switch comp {
	case PackCompNone:
		finalContent = content.Bytes()
	case PackCompZlib:
		var buf bytes.Buffer
		zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if _, err := zw.Write(content.Bytes()); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		finalContent = buf.Bytes()
	case PackCompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		finalContent = enc.EncodeAll(content.Bytes(), nil)
	default:
		return nil, fmt.Errorf("xp: unsupported pack compression: %d", comp)
	}

	var out bytes.Buffer
	out.WriteString(packMagicStr)
	out.WriteByte(packVersion1)
	out.WriteByte(byte(comp))
	_, _ = out.Write(finalContent)
	return out.Bytes(), nil
}

// dedupeStreams builds the unique blob table and, for each entry, the
// index of its blob. Identical streams share one blob; the xxhash index
// is verified byte-for-byte before reuse.
func dedupeStreams(entries []PackEntry) ([][]byte, []int) {
	blobs := make([][]byte, 0, len(entries))
	index := make(map[uint64]int, len(entries))
	refs := make([]int, len(entries))
	for i, e := range entries {
		h := xxhash.Sum64(e.Stream)
		if idx, ok := index[h]; ok && bytes.Equal(blobs[idx], e.Stream) {
			refs[i] = idx
			continue
		}
		idx := len(blobs)
		blobs = append(blobs, e.Stream)
		index[h] = idx
		refs[i] = idx
	}
	return blobs, refs
}

// UnmarshalPack parses a .xppack blob, returning the pack and the
// compression its content section used.
func UnmarshalPack(data []byte) (*Pack, PackCompression, error) {
	if len(data) < len(packMagicStr)+2 || string(data[:len(packMagicStr)]) != packMagicStr {
		return nil, 0, fmt.Errorf("xp: not a .xppack")
	}
	version := data[len(packMagicStr)]
	if version != packVersion1 {
		return nil, 0, fmt.Errorf("xp: unsupported pack version: %d", version)
	}
	comp := PackCompression(data[len(packMagicStr)+1])
	contentBytes := data[len(packMagicStr)+2:]
	switch comp {
	case PackCompNone:
		// no-op
	case PackCompZlib:
		zr, err := zlib.NewReader(bytes.NewReader(contentBytes))
		if err != nil {
			return nil, 0, err
		}
		defer zr.Close()
		b, err := io.ReadAll(zr)
		if err != nil {
			return nil, 0, err
		}
		contentBytes = b
	case PackCompZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, 0, err
		}
		defer dec.Close()
		b, err := dec.DecodeAll(contentBytes, nil)
		if err != nil {
			return nil, 0, err
		}
		contentBytes = b
	default:
		return nil, 0, fmt.Errorf("xp: unsupported pack compression: %d", comp)
	}

	r := bytes.NewReader(contentBytes)
	var nBlobs uint32
	if err := binary.Read(r, binary.LittleEndian, &nBlobs); err != nil {
		return nil, 0, err
	}
	blobs := make([][]byte, nBlobs)
	for i := uint32(0); i < nBlobs; i++ {
		var sum uint64
		if err := binary.Read(r, binary.LittleEndian, &sum); err != nil {
			return nil, 0, err
		}
		var blen uint32
		if err := binary.Read(r, binary.LittleEndian, &blen); err != nil {
			return nil, 0, err
		}
		b := make([]byte, blen)
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, 0, err
		}
		if xxhash.Sum64(b) != sum {
			return nil, 0, fmt.Errorf("xp: pack blob %d: content digest mismatch", i)
		}
		blobs[i] = b
	}

	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, 0, err
	}
	pack := &Pack{Entries: make([]PackEntry, n)}
	for i := uint32(0); i < n; i++ {
		var nameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, 0, err
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBytes); err != nil {
			return nil, 0, err
		}
		var idx uint32
		if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
			return nil, 0, err
		}
		if idx >= nBlobs {
			return nil, 0, fmt.Errorf("xp: pack entry %q: invalid blob index %d", nameBytes, idx)
		}
		pack.Entries[i] = PackEntry{Name: string(nameBytes), Stream: blobs[idx]}
	}
	return pack, comp, nil
}
