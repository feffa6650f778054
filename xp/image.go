// Package xp decodes the REXPaint .xp image format: a gzip-compressed
// stream of layered cell grids, each cell a glyph keycode plus foreground
// and background RGB colors.
package xp

// Byte widths of the fixed fields in a decompressed .xp stream. Every
// multi-byte field is 4 bytes wide and stored little-endian.
const (
	versionBytes    = 4
	layerCountBytes = 4

	layerWidthBytes  = 4
	layerHeightBytes = 4

	keycodeBytes = 4
	foreRGBBytes = 3
	backRGBBytes = 3
	cellBytes    = keycodeBytes + foreRGBBytes + backRGBBytes
)

// REXPaint's background color key for transparent cells. The decoder does
// not act on it; renderers compare a cell's background against these.
const (
	TransparentBackR = 255
	TransparentBackG = 0
	TransparentBackB = 255
)

// Image is one decoded .xp document. Width and Height are the largest
// width and height seen across the layers, which for files written by
// REXPaint itself means the shared canvas size.
type Image struct {
	Version    int32
	LayerCount int32
	Width      int
	Height     int
	Layers     []Layer
}

// Layer is a single width x height grid of cells. Cells is indexed
// [x][y], matching the on-disk record order (x varies slowest).
type Layer struct {
	Width  int
	Height int
	Cells  [][]Cell
}

// Cell is one character slot: a keycode (glyph index, not a platform
// keycode) and foreground/background colors.
type Cell struct {
	Keycode uint32
	ForeR   uint8
	ForeG   uint8
	ForeB   uint8
	BackR   uint8
	BackG   uint8
	BackB   uint8
}

// TransparentBack reports whether the cell's background is REXPaint's
// transparency key.
func (c Cell) TransparentBack() bool {
	return c.BackR == TransparentBackR && c.BackG == TransparentBackG && c.BackB == TransparentBackB
}
