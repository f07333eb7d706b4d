// Package export rasterizes a scene and encodes the result for saving.
package export

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"AnnotateBoard/internal/state"
)

// Render draws the scene into a width×height image. The view is stretched to
// the image, so a scene can be rendered at device resolution.
func Render(sc *state.Scene, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if width <= 0 || height <= 0 {
		return dst
	}

	vw, vh := sc.ViewSize()
	sx, sy := 1.0, 1.0
	if vw > 0 && vh > 0 {
		sx, sy = float64(width)/vw, float64(height)/vh
	}

	if bg := sc.Background(); bg != nil {
		drawBackground(dst, bg, sx, sy)
	}

	dc := gg.NewContextForRGBA(dst)
	for _, s := range sc.Snapshot() {
		switch s.Blend {
		case state.BlendDestinationOut:
			layer := strokeLayer(s, width, height, sx, sy)
			draw.DrawMask(dst, dst.Bounds(), image.Transparent, image.Point{}, layer, image.Point{}, draw.Src)
		case state.BlendMultiply:
			multiply(dst, strokeLayer(s, width, height, sx, sy))
		default:
			strokePath(dc, s, sx, sy)
		}
	}
	return dst
}

// RenderOver draws the scene on an opaque background of the given color.
func RenderOver(sc *state.Scene, width, height int, bg color.Color) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), Render(sc, width, height), image.Point{}, draw.Over)
	return out
}

func drawBackground(dst *image.RGBA, bg *state.Background, sx, sy float64) {
	a := bg.Area
	r := image.Rect(
		int(math.Round(a.X*sx)), int(math.Round(a.Y*sy)),
		int(math.Round((a.X+a.Width)*sx)), int(math.Round((a.Y+a.Height)*sy)),
	)
	draw.CatmullRom.Scale(dst, r, bg.Image, bg.Image.Bounds(), draw.Over, nil)
}

func strokeLayer(s state.Stroke, width, height int, sx, sy float64) *image.RGBA {
	dc := gg.NewContext(width, height)
	strokePath(dc, s, sx, sy)
	return dc.Image().(*image.RGBA)
}

func strokePath(dc *gg.Context, s state.Stroke, sx, sy float64) {
	if len(s.Points) == 0 {
		return
	}
	c := s.Color
	alpha := float64(c.A) / 255 * s.Opacity
	dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, alpha)

	width := s.Width * (sx + sy) / 2
	pts := make([]state.Point, len(s.Points))
	for i, p := range s.Points {
		pts[i] = state.Point{X: p.X * sx, Y: p.Y * sy}
	}

	if len(pts) == 1 {
		dc.DrawCircle(pts[0].X, pts[0].Y, width/2)
		dc.Fill()
		return
	}

	dc.SetLineWidth(width)
	dc.SetLineCap(lineCap(s.Cap))
	dc.SetLineJoin(gg.LineJoinRound)
	dc.MoveTo(pts[0].X, pts[0].Y)
	if s.Smooth && len(pts) > 2 {
		// quadratic segments through the midpoints of consecutive points
		for i := 1; i < len(pts)-1; i++ {
			mx, my := (pts[i].X+pts[i+1].X)/2, (pts[i].Y+pts[i+1].Y)/2
			dc.QuadraticTo(pts[i].X, pts[i].Y, mx, my)
		}
		last := pts[len(pts)-1]
		dc.LineTo(last.X, last.Y)
	} else {
		for _, p := range pts[1:] {
			dc.LineTo(p.X, p.Y)
		}
	}
	dc.Stroke()
}

func lineCap(c state.Cap) gg.LineCap {
	switch c {
	case state.CapButt:
		return gg.LineCapButt
	case state.CapSquare:
		return gg.LineCapSquare
	default:
		return gg.LineCapRound
	}
}

// multiply composites src onto dst with the separable multiply blend mode.
// Both images hold premultiplied pixels of the same size.
func multiply(dst, src *image.RGBA) {
	for i := 0; i+3 < len(src.Pix); i += 4 {
		sa := float64(src.Pix[i+3]) / 255
		if sa == 0 {
			continue
		}
		da := float64(dst.Pix[i+3]) / 255
		for c := 0; c < 3; c++ {
			s := float64(src.Pix[i+c]) / 255
			d := float64(dst.Pix[i+c]) / 255
			v := s*(1-da) + d*(1-sa) + s*d
			dst.Pix[i+c] = clamp8(v)
		}
		dst.Pix[i+3] = clamp8(sa + da - sa*da)
	}
}

func clamp8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
