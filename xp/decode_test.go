package xp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// buildLayer encodes one layer record with cells in x-outer/y-inner order.
func buildLayer(w, h uint32, cells []Cell) []byte {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.LittleEndian, w)
	_ = binary.Write(&b, binary.LittleEndian, h)
	for _, c := range cells {
		_ = binary.Write(&b, binary.LittleEndian, c.Keycode)
		b.Write([]byte{c.ForeR, c.ForeG, c.ForeB, c.BackR, c.BackG, c.BackB})
	}
	return b.Bytes()
}

func buildStream(version uint32, layers ...[]byte) []byte {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.LittleEndian, version)
	_ = binary.Write(&b, binary.LittleEndian, uint32(len(layers)))
	for _, l := range layers {
		b.Write(l)
	}
	return b.Bytes()
}

func TestDecode_SingleLayer(t *testing.T) {
	data := buildStream(1, buildLayer(2, 1, []Cell{
		{Keycode: 65, ForeR: 252, ForeG: 252, ForeB: 252},
		{Keycode: 66, ForeR: 252, ForeG: 252, ForeB: 252},
	}))
	img, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Version != 1 || img.LayerCount != 1 || len(img.Layers) != 1 {
		t.Fatalf("unexpected header fields: %+v", img)
	}
	if img.Width != 2 || img.Height != 1 {
		t.Fatalf("expected 2x1 canvas, got %dx%d", img.Width, img.Height)
	}
	l := img.Layers[0]
	if len(l.Cells) != l.Width || len(l.Cells[0]) != l.Height {
		t.Fatalf("grid shape mismatch: %d cols of %d", len(l.Cells), len(l.Cells[0]))
	}
	if l.Cells[0][0].Keycode != 65 || l.Cells[1][0].Keycode != 66 {
		t.Fatalf("cell order wrong: got keycodes %d, %d", l.Cells[0][0].Keycode, l.Cells[1][0].Keycode)
	}
	if l.Cells[0][0].ForeR != 252 || l.Cells[0][0].BackB != 0 {
		t.Fatalf("cell colors wrong: %+v", l.Cells[0][0])
	}
}

func TestDecode_CellOrderColumnMajor(t *testing.T) {
	// 2x3 layer, keycodes count up in stored order: cell (x,y) must land
	// at Cells[x][y] with x the slower index.
	cells := make([]Cell, 6)
	for i := range cells {
		cells[i].Keycode = uint32(i)
	}
	img, err := Decode(buildStream(1, buildLayer(2, 3, cells)))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	l := img.Layers[0]
	for x := 0; x < 2; x++ {
		for y := 0; y < 3; y++ {
			want := uint32(x*3 + y)
			if got := l.Cells[x][y].Keycode; got != want {
				t.Fatalf("Cells[%d][%d].Keycode = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestDecode_MaximaAcrossLayers(t *testing.T) {
	// Differing layer sizes are legal; the document records the maxima,
	// which need not come from the same layer.
	wide := buildLayer(3, 1, make([]Cell, 3))
	tall := buildLayer(1, 4, make([]Cell, 4))
	img, err := Decode(buildStream(7, wide, tall))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.LayerCount != 2 || len(img.Layers) != 2 {
		t.Fatalf("expected 2 layers, got %+v", img)
	}
	if img.Width != 3 || img.Height != 4 {
		t.Fatalf("expected 3x4 maxima, got %dx%d", img.Width, img.Height)
	}
}

func TestDecode_EmptyDocument(t *testing.T) {
	img, err := Decode(buildStream(1))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(img.Layers) != 0 || img.Width != 0 || img.Height != 0 {
		t.Fatalf("expected empty document, got %+v", img)
	}
}

func TestDecode_Truncated(t *testing.T) {
	full := buildStream(1, buildLayer(2, 2, make([]Cell, 4)))
	for _, tc := range []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"mid_header", full[:5]},
		{"mid_layer_dims", full[:10]},
		{"mid_cell", full[:len(full)-3]},
		{"missing_last_cell", full[:len(full)-cellBytes]},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.data)
			if err == nil {
				t.Fatalf("expected error for truncated input")
			}
			if !errors.Is(err, ErrTruncated) {
				t.Fatalf("expected ErrTruncated, got %v", err)
			}
		})
	}
}

func TestDecode_TruncatedErrorContext(t *testing.T) {
	data := buildStream(1, buildLayer(2, 2, make([]Cell, 4)))[:6]
	_, err := Decode(data)
	var te *TruncatedError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TruncatedError, got %v", err)
	}
	if te.Offset != 4 || te.Need != 4 || te.Have != 2 {
		t.Fatalf("unexpected error context: %+v", te)
	}
}

func TestDecodeEndian_FlipsFields(t *testing.T) {
	data := buildStream(0x01020304)
	le, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	be, err := DecodeEndian(data, false)
	if err != nil {
		t.Fatalf("DecodeEndian failed: %v", err)
	}
	if le.Version != 0x01020304 {
		t.Fatalf("little-endian version = %#x", le.Version)
	}
	if be.Version != 0x04030201 {
		t.Fatalf("big-endian version = %#x, want byte-swapped value", be.Version)
	}
}

func TestCell_TransparentBack(t *testing.T) {
	c := Cell{BackR: 255, BackG: 0, BackB: 255}
	if !c.TransparentBack() {
		t.Fatalf("expected transparency key to match")
	}
	c.BackG = 1
	if c.TransparentBack() {
		t.Fatalf("expected non-key background to not match")
	}
}
