package xp

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// LoadFile reads and decodes a .xp file from disk.
func LoadFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadReader(f)
}

// LoadReader decodes a .xp file from r. The stream is the gzip container
// as written by REXPaint; it is fully decompressed before parsing begins.
func LoadReader(r io.Reader) (*Image, error) {
	data, err := decompress(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func decompress(r io.Reader) ([]byte, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("xp: decompress: %w", err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("xp: decompress: %w", err)
	}
	return data, nil
}

// compress wraps a decompressed .xp stream back into the gzip container.
func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
