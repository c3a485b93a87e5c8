// Package export writes scene snapshots as SVG.
package export

import (
	"fmt"
	"strings"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/san-kum/physim/internal/viz"
)

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	pw, ph := canvas.PixelSize()
	width := float64(pw) * scale
	height := float64(ph) * scale

	var sb strings.Builder
	sb.WriteString(svgHeader(width, height))
	sb.WriteString("<g fill=\"#00ff00\">\n")

	dotRadius := scale * 0.4
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func svgHeader(width, height float64) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

// SideViewSVG draws boxes projected onto the x-y plane, looking down -z,
// with the ground line at y=0. The view is fitted to the boxes plus 10%
// padding.
func SideViewSVG(boxes []cube.BBox, width, height int, strokeColor string) string {
	if len(boxes) == 0 {
		return ""
	}

	minX, maxX := float64(boxes[0].Min().X()), float64(boxes[0].Max().X())
	minY, maxY := 0.0, float64(boxes[0].Max().Y())
	for _, bb := range boxes {
		minX = min(minX, float64(bb.Min().X()))
		maxX = max(maxX, float64(bb.Max().X()))
		minY = min(minY, float64(bb.Min().Y()))
		maxY = max(maxY, float64(bb.Max().Y()))
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	// One scale for both axes so boxes keep their aspect.
	scale := min(float64(width)/rangeX, float64(height)/rangeY)
	toX := func(x float64) float64 { return (x - minX) * scale }
	toY := func(y float64) float64 { return float64(height) - (y-minY)*scale }

	var sb strings.Builder
	sb.WriteString(svgHeader(float64(width), float64(height)))
	sb.WriteString(fmt.Sprintf("<line x1=\"0\" y1=\"%.1f\" x2=\"%d\" y2=\"%.1f\" stroke=\"#666688\" stroke-width=\"1\"/>\n",
		toY(0), width, toY(0)))
	sb.WriteString(fmt.Sprintf("<g fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\">\n", strokeColor))
	for _, bb := range boxes {
		x := toX(float64(bb.Min().X()))
		y := toY(float64(bb.Max().Y()))
		w := float64(bb.Max().X()-bb.Min().X()) * scale
		h := float64(bb.Max().Y()-bb.Min().Y()) * scale
		sb.WriteString(fmt.Sprintf("<rect x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\"/>\n", x, y, w, h))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
