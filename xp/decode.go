package xp

import "encoding/binary"

// Decode parses a fully decompressed .xp stream into an Image. The whole
// stream is decoded in one pass; on any error no partial result is
// returned. Multi-byte fields are decoded little-endian, the format's
// on-disk order.
func Decode(data []byte) (*Image, error) {
	return DecodeEndian(data, true)
}

// DecodeEndian is Decode with the byte order exposed as a reverse-endian
// flag: true (the default everywhere else in this package) decodes
// multi-byte fields as little-endian, false as big-endian. Only needed
// for streams whose integer fields were written byte-swapped.
func DecodeEndian(data []byte, reverseEndian bool) (*Image, error) {
	var order binary.ByteOrder = binary.BigEndian
	if reverseEndian {
		order = binary.LittleEndian
	}
	r := newReader(data, order)

	version, err := r.u32()
	if err != nil {
		return nil, err
	}
	layerCount, err := r.u32()
	if err != nil {
		return nil, err
	}

	img := &Image{
		Version:    int32(version),
		LayerCount: int32(layerCount),
	}
	for i := uint32(0); i < layerCount; i++ {
		layer, err := frameLayer(r)
		if err != nil {
			return nil, err
		}
		if layer.Width > img.Width {
			img.Width = layer.Width
		}
		if layer.Height > img.Height {
			img.Height = layer.Height
		}
		img.Layers = append(img.Layers, layer)
	}
	return img, nil
}

// frameLayer peeks the next layer's width and height to size its record,
// slices that record out, and hands it to parseLayer as a self-contained
// buffer. The cursor advances by the whole record.
func frameLayer(r *reader) (Layer, error) {
	width, err := r.peekU32(0)
	if err != nil {
		return Layer{}, err
	}
	height, err := r.peekU32(layerWidthBytes)
	if err != nil {
		return Layer{}, err
	}

	// Sized in 64 bits: width and height are untrusted 32-bit values.
	size := int64(layerWidthBytes+layerHeightBytes) + int64(cellBytes)*int64(width)*int64(height)
	if remaining := int64(len(r.data) - r.pos); size > remaining {
		return Layer{}, &TruncatedError{Offset: r.base + r.pos, Need: int(size), Have: int(remaining)}
	}

	record, err := r.sub(int(size))
	if err != nil {
		return Layer{}, err
	}
	layer, err := parseLayer(record)
	if err != nil {
		return Layer{}, err
	}
	if err := r.skip(int(size)); err != nil {
		return Layer{}, err
	}
	return layer, nil
}

// parseLayer decodes one self-contained layer record: width, height, then
// width*height cells ordered x-outer/y-inner as stored on disk.
func parseLayer(r *reader) (Layer, error) {
	width, err := r.u32()
	if err != nil {
		return Layer{}, err
	}
	height, err := r.u32()
	if err != nil {
		return Layer{}, err
	}

	layer := Layer{
		Width:  int(width),
		Height: int(height),
		Cells:  make([][]Cell, width),
	}
	for x := uint32(0); x < width; x++ {
		col := make([]Cell, height)
		for y := uint32(0); y < height; y++ {
			cell, err := decodeCell(r)
			if err != nil {
				return Layer{}, err
			}
			col[y] = cell
		}
		layer.Cells[x] = col
	}
	return layer, nil
}

// decodeCell decodes one 10-byte cell record: 4-byte keycode then the two
// RGB triples. Single-byte color fields need no endian handling.
func decodeCell(r *reader) (Cell, error) {
	keycode, err := r.u32()
	if err != nil {
		return Cell{}, err
	}
	var rgb [foreRGBBytes + backRGBBytes]uint8
	for i := range rgb {
		v, err := r.u8()
		if err != nil {
			return Cell{}, err
		}
		rgb[i] = v
	}
	return Cell{
		Keycode: keycode,
		ForeR:   rgb[0],
		ForeG:   rgb[1],
		ForeB:   rgb[2],
		BackR:   rgb[3],
		BackG:   rgb[4],
		BackB:   rgb[5],
	}, nil
}
