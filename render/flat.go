package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/b1naryth1ef/atlas"
)

// FlatRenderer writes a solid single-color tile per region. It stands in when
// no real tile pipeline is wired up and keeps the full task lifecycle
// exercisable without one.
type FlatRenderer struct {
	Color    color.RGBA
	TileSize int
}

func NewFlatRenderer() *FlatRenderer {
	return &FlatRenderer{
		Color:    color.RGBA{R: 46, G: 52, B: 64, A: 255},
		TileSize: 512,
	}
}

func (f *FlatRenderer) RenderRegion(m *atlas.Map, r atlas.Region) error {
	err := os.MkdirAll(m.TileDir, os.ModePerm)
	if err != nil {
		return err
	}

	img := image.NewRGBA(image.Rect(0, 0, f.TileSize, f.TileSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: f.Color}, image.Point{}, draw.Src)

	fd, err := os.Create(filepath.Join(m.TileDir, r.String()+".png"))
	if err != nil {
		return err
	}
	defer fd.Close()

	return png.Encode(fd, img)
}
