package tui

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kuvia/kuvia/internal/gallery"
)

// halfBlock draws two vertically stacked pixels per cell: the foreground
// paints the upper one and the background the lower one.
const halfBlock = "▀"

// PreviewSize returns the pixel size an image of imgW x imgH is drawn at
// for zoom within an area of cols x rows terminal cells. Each cell holds
// one pixel across and two pixels down.
//
// At ZoomMin the image fits half the area, at ZoomMed it fits the whole
// area and at ZoomMax it is drawn at its own size and cropped to the area.
func PreviewSize(imgW, imgH, cols, rows int, zoom gallery.ZoomLevel) (w, h int) {
	if imgW <= 0 || imgH <= 0 || cols <= 0 || rows <= 0 {
		return 0, 0
	}
	maxW, maxH := cols, rows*2

	switch zoom {
	case gallery.ZoomMax:
		return min(imgW, maxW), min(imgH, maxH)
	case gallery.ZoomMin:
		maxW, maxH = max(maxW/2, 1), max(maxH/2, 1)
	}
	return fit(imgW, imgH, maxW, maxH)
}

// fit scales w x h to the largest size within maxW x maxH that keeps the
// aspect ratio. Images are never enlarged.
func fit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	if w*maxH > h*maxW {
		return maxW, max(h*maxW/w, 1)
	}
	return max(w*maxH/h, 1), maxH
}

// RenderPreview draws img for zoom inside cols x rows cells.
func RenderPreview(img image.Image, cols, rows int, zoom gallery.ZoomLevel) string {
	b := img.Bounds()
	w, h := PreviewSize(b.Dx(), b.Dy(), cols, rows, zoom)
	if w == 0 || h == 0 {
		return ""
	}

	// Sample either a scaled or a centered, cropped region.
	srcW, srcH := b.Dx(), b.Dy()
	offX, offY := 0, 0
	if zoom == gallery.ZoomMax {
		offX, offY = (srcW-w)/2, (srcH-h)/2
		srcW, srcH = w, h
	}
	at := func(x, y int) lipgloss.Color {
		sx := b.Min.X + offX + x*srcW/w
		sy := b.Min.Y + offY + y*srcH/h
		return hexColor(img, sx, sy)
	}

	lines := make([]string, 0, (h+1)/2)
	for y := 0; y < h; y += 2 {
		var line strings.Builder
		for x := 0; x < w; x++ {
			style := lipgloss.NewStyle().Foreground(at(x, y))
			if y+1 < h {
				style = style.Background(at(x, y+1))
			}
			line.WriteString(style.Render(halfBlock))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func hexColor(img image.Image, x, y int) lipgloss.Color {
	r, g, b, _ := img.At(x, y).RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
