// Package api offers memory-level conveniences over the xp package for
// hosts that ship REXPaint asset sets as .xppack bundles.
package api

import (
	"github.com/gridforge/xp/xp"
)

// PackXP builds a zstd-compressed .xppack from raw .xp file bytes keyed
// by name.
func PackXP(files map[string][]byte) ([]byte, error) {
	pack, err := xp.BuildPack(files)
	if err != nil {
		return nil, err
	}
	return pack.Marshal(xp.PackCompZstd)
}

// UnpackXPToMemory returns a map of entry name -> standalone .xp file
// bytes from a .xppack blob.
func UnpackXPToMemory(packBytes []byte) (map[string][]byte, error) {
	pack, _, err := xp.UnmarshalPack(packBytes)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(pack.Entries))
	for _, e := range pack.Entries {
		data, err := pack.XPBytes(e.Name)
		if err != nil {
			return nil, err
		}
		out[e.Name] = data
	}
	return out, nil
}

// DecodeAll decodes every entry of a .xppack blob.
func DecodeAll(packBytes []byte) (map[string]*xp.Image, error) {
	pack, _, err := xp.UnmarshalPack(packBytes)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*xp.Image, len(pack.Entries))
	for _, e := range pack.Entries {
		img, err := pack.Image(e.Name)
		if err != nil {
			return nil, err
		}
		out[e.Name] = img
	}
	return out, nil
}
