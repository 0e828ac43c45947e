package scene

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// ErrEmptyScene is returned when there is nothing to export.
var ErrEmptyScene = errors.New("nothing to export")

const (
	cellWidth  = 8.0
	cellHeight = 16.0
	exportPad  = 2.0
)

// bounds returns the world rectangle covering every object.
func (c *Canvas) bounds() (minX, minY, maxX, maxY float64, ok bool) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, o := range c.objects {
		w, h := o.Width, o.Height
		if o.Kind == KindText {
			h = float64(len(o.Lines))
			for _, line := range o.Lines {
				w = math.Max(w, float64(utf8.RuneCountInString(line)))
			}
		}
		minX = math.Min(minX, o.X)
		minY = math.Min(minY, o.Y)
		maxX = math.Max(maxX, o.X+w)
		maxY = math.Max(maxY, o.Y+h)
	}
	return minX, minY, maxX, maxY, len(c.objects) > 0
}

// ExportPNG rasterizes the whole scene, ignoring the viewport, with one
// world unit per character cell.
func (c *Canvas) ExportPNG(w io.Writer) error {
	minX, minY, maxX, maxY, ok := c.bounds()
	if !ok {
		return ErrEmptyScene
	}
	minX -= exportPad
	minY -= exportPad
	maxX += exportPad
	maxY += exportPad

	dc := gg.NewContext(int((maxX-minX)*cellWidth), int((maxY-minY)*cellHeight))
	dc.SetColor(color.White)
	dc.Clear()

	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	for _, kind := range []Kind{KindGuide, KindText, KindBox} {
		for _, o := range c.objects {
			if o.Kind != kind {
				continue
			}
			x := (o.X - minX) * cellWidth
			y := (o.Y - minY) * cellHeight
			switch o.Kind {
			case KindGuide:
				drawGuidePNG(dc, o, x, y)
			case KindText:
				drawLinesPNG(dc, o, x, y)
			case KindBox:
				drawBoxPNG(dc, o, x, y)
			}
		}
	}

	return dc.EncodePNG(w)
}

// ExportPNGFile writes ExportPNG output to path.
func (c *Canvas) ExportPNGFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.ExportPNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func setColor(dc *gg.Context, hex string, fallback color.Color) {
	if hex == "" {
		dc.SetColor(fallback)
		return
	}
	dc.SetHexColor(hex)
}

func drawGuidePNG(dc *gg.Context, o Object, x, y float64) {
	dc.SetDash(4, 4)
	dc.SetLineWidth(1)
	setColor(dc, o.Stroke, color.Gray{Y: 150})
	dc.DrawRectangle(x, y, o.Width*cellWidth, o.Height*cellHeight)
	dc.Stroke()
	dc.SetDash()
}

func drawBoxPNG(dc *gg.Context, o Object, x, y float64) {
	width := o.Width * cellWidth
	height := o.Height * cellHeight
	if o.Fill != "" {
		dc.SetHexColor(o.Fill)
		dc.DrawRectangle(x, y, width, height)
		dc.Fill()
	}
	dc.SetLineWidth(1)
	setColor(dc, o.Stroke, color.Black)
	dc.DrawRectangle(x, y, width, height)
	dc.Stroke()

	dc.SetColor(color.Black)
	for i, line := range o.Lines {
		dc.DrawString(line, x+cellWidth, y+cellHeight*float64(i+1))
	}
}

func drawLinesPNG(dc *gg.Context, o Object, x, y float64) {
	setColor(dc, o.Fill, color.Black)
	for i, line := range o.Lines {
		dc.DrawString(line, x, y+cellHeight*float64(i+1))
	}
}

// ExportText writes the scene as it looks through the viewport, one line
// per terminal row.
func (c *Canvas) ExportText(w io.Writer, width, height int) error {
	if width < 1 {
		width = 80
	}
	if height < 1 {
		height = 24
	}
	for _, line := range c.Render(width, height) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
