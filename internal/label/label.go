// Package label renders printable barcode labels for items.
package label

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/boombuler/barcode/code128"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/printroom/stockroom/internal/model"
)

const (
	// ModuleWidth is the width in pixels of the narrowest bar.
	ModuleWidth = 2
	// BarHeight is the height in pixels of the bars.
	BarHeight = 60
	// Margin is the quiet zone around the label content.
	Margin = 10
	// MaxNameRunes caps the printed item name.
	MaxNameRunes = 32

	lineGap = 4
)

// ContentType is the MIME type of rendered labels.
const ContentType = "image/png"

// ErrEmptyCode is returned for an item without a scan code.
var ErrEmptyCode = errors.New("label needs a scan code")

// Image draws the label for item: a Code 128 barcode of its scan code with
// the name and code printed underneath.
func Image(item model.Item) (image.Image, error) {
	if item.Code == "" {
		return nil, ErrEmptyCode
	}

	bc, err := code128.Encode(item.Code)
	if err != nil {
		return nil, fmt.Errorf("encoding barcode: %w", err)
	}

	face := basicfont.Face7x13
	lines := []string{truncate(item.Name, MaxNameRunes), item.Code}

	barW := bc.Bounds().Dx() * ModuleWidth
	contentW := barW
	for _, l := range lines {
		if w := font.MeasureString(face, l).Ceil(); w > contentW {
			contentW = w
		}
	}
	lineH := face.Metrics().Height.Ceil() + lineGap

	width := contentW + 2*Margin
	height := Margin + BarHeight + len(lines)*lineH + Margin

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	// Bars are scaled with nearest-neighbour so module edges stay sharp.
	barX := (width - barW) / 2
	barRect := image.Rect(barX, Margin, barX+barW, Margin+BarHeight)
	draw.NearestNeighbor.Scale(dst, barRect, bc, bc.Bounds(), draw.Src, nil)

	d := &font.Drawer{Dst: dst, Src: image.NewUniform(color.Black), Face: face}
	baseline := Margin + BarHeight + lineGap + face.Metrics().Ascent.Ceil()
	for _, l := range lines {
		w := d.MeasureString(l).Ceil()
		d.Dot = fixed.P((width-w)/2, baseline)
		d.DrawString(l)
		baseline += lineH
	}

	return dst, nil
}

// Render returns the label for item encoded as PNG.
func Render(item model.Item) ([]byte, error) {
	img, err := Image(item)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
