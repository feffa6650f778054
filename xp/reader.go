package xp

import "encoding/binary"

// reader is a bounds-checked cursor over a decompressed .xp stream. base
// is the cursor's offset within the whole stream, so sub-readers handed a
// sliced layer record still report absolute offsets in errors.
type reader struct {
	data  []byte
	pos   int
	base  int
	order binary.ByteOrder
}

func newReader(data []byte, order binary.ByteOrder) *reader {
	return &reader{data: data, order: order}
}

// sub returns a reader over the next n bytes without advancing.
func (r *reader) sub(n int) (*reader, error) {
	if err := r.check(0, n); err != nil {
		return nil, err
	}
	return &reader{
		data:  r.data[r.pos : r.pos+n],
		base:  r.base + r.pos,
		order: r.order,
	}, nil
}

func (r *reader) check(off, n int) error {
	if len(r.data)-(r.pos+off) < n {
		have := len(r.data) - (r.pos + off)
		if have < 0 {
			have = 0
		}
		return &TruncatedError{Offset: r.base + r.pos + off, Need: n, Have: have}
	}
	return nil
}

// u32 consumes a 4-byte unsigned integer in the reader's byte order.
func (r *reader) u32() (uint32, error) {
	if err := r.check(0, 4); err != nil {
		return 0, err
	}
	v := r.order.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// peekU32 reads a 4-byte unsigned integer at pos+off without advancing.
func (r *reader) peekU32(off int) (uint32, error) {
	if err := r.check(off, 4); err != nil {
		return 0, err
	}
	return r.order.Uint32(r.data[r.pos+off:]), nil
}

func (r *reader) u8() (uint8, error) {
	if err := r.check(0, 1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

// skip advances the cursor by n previously-validated bytes.
func (r *reader) skip(n int) error {
	if err := r.check(0, n); err != nil {
		return err
	}
	r.pos += n
	return nil
}
