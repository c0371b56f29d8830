package mapcanvas

import (
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// Surface is the drawable 2D contract the engine renders through: a raster
// sized in device pixels with a reported device pixel ratio, exposing
// immediate-mode drawing primitives. All coordinates passed to drawing ops
// are in whatever space the current transform establishes.
type Surface interface {
	// Resize sets the logical size and device pixel ratio. The backing
	// store is logical*dpr; the logical size is what callers work in.
	Resize(w, h, dpr float64)
	LogicalSize() (w, h float64)
	DeviceScale() float64

	// Clear resets the transform and fills the whole surface.
	Clear(c color.Color)

	Save()
	Restore()
	Translate(x, y float64)
	ScaleBy(s float64)

	SetColor(c color.Color)
	SetLineWidth(w float64)
	FillCircle(x, y, r float64)
	StrokeCircle(x, y, r float64)
	Line(x1, y1, x2, y2 float64)
	FillRect(x, y, w, h float64)
	FillPolygon(pts []Vec2)
	StrokePolygon(pts []Vec2)
	Text(s string, x, y float64)
}

// RasterSurface is the gg-backed Surface. The backing store is scaled by
// the device pixel ratio while callers keep working in logical pixels.
type RasterSurface struct {
	ctx  *gg.Context
	w, h float64
	dpr  float64
}

// NewRasterSurface allocates a surface at the given logical size and DPR.
func NewRasterSurface(w, h, dpr float64) *RasterSurface {
	s := &RasterSurface{}
	s.Resize(w, h, dpr)
	return s
}

func (s *RasterSurface) Resize(w, h, dpr float64) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if dpr <= 0 {
		dpr = 1
	}
	s.w, s.h, s.dpr = w, h, dpr
	s.ctx = gg.NewContext(int(w*dpr), int(h*dpr))
	s.ctx.SetFontFace(labelFace())
}

func (s *RasterSurface) LogicalSize() (float64, float64) { return s.w, s.h }
func (s *RasterSurface) DeviceScale() float64            { return s.dpr }

func (s *RasterSurface) Clear(c color.Color) {
	s.ctx.Identity()
	s.ctx.SetColor(c)
	s.ctx.Clear()
	// Work in logical pixels from here on.
	s.ctx.Scale(s.dpr, s.dpr)
}

func (s *RasterSurface) Save()                  { s.ctx.Push() }
func (s *RasterSurface) Restore()               { s.ctx.Pop() }
func (s *RasterSurface) Translate(x, y float64) { s.ctx.Translate(x, y) }
func (s *RasterSurface) ScaleBy(v float64)      { s.ctx.Scale(v, v) }

func (s *RasterSurface) SetColor(c color.Color) { s.ctx.SetColor(c) }
func (s *RasterSurface) SetLineWidth(w float64) { s.ctx.SetLineWidth(w) }

func (s *RasterSurface) FillCircle(x, y, r float64) {
	s.ctx.DrawCircle(x, y, r)
	s.ctx.Fill()
}

func (s *RasterSurface) StrokeCircle(x, y, r float64) {
	s.ctx.DrawCircle(x, y, r)
	s.ctx.Stroke()
}

func (s *RasterSurface) Line(x1, y1, x2, y2 float64) {
	s.ctx.DrawLine(x1, y1, x2, y2)
	s.ctx.Stroke()
}

func (s *RasterSurface) FillRect(x, y, w, h float64) {
	s.ctx.DrawRectangle(x, y, w, h)
	s.ctx.Fill()
}

func (s *RasterSurface) path(pts []Vec2) {
	if len(pts) == 0 {
		return
	}
	s.ctx.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		s.ctx.LineTo(p.X, p.Y)
	}
	s.ctx.ClosePath()
}

func (s *RasterSurface) FillPolygon(pts []Vec2) {
	if len(pts) < 3 {
		return
	}
	s.path(pts)
	s.ctx.Fill()
}

func (s *RasterSurface) StrokePolygon(pts []Vec2) {
	if len(pts) < 2 {
		return
	}
	s.path(pts)
	s.ctx.Stroke()
}

func (s *RasterSurface) Text(str string, x, y float64) {
	s.ctx.DrawStringAnchored(str, x, y, 0.5, 0.5)
}

// Image exposes the rendered frame, e.g. for PNG export.
func (s *RasterSurface) Image() image.Image {
	return s.ctx.Image()
}

// EncodePNG writes the current frame as PNG.
func (s *RasterSurface) EncodePNG(w io.Writer) error {
	return s.ctx.EncodePNG(w)
}

var defaultLabelFace = mustLabelFace()

// mustLabelFace parses the embedded monospace font used for element labels.
// gomono.TTF ships with the binary and always parses.
func mustLabelFace() font.Face {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		panic(err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: 12})
}

func labelFace() font.Face {
	return defaultLabelFace
}
