package domain

// Pixel is a single 24-bit RGB cell.
type Pixel struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// White is the color of every never-written cell.
var White = Pixel{R: 255, G: 255, B: 255}

// Canvas is a dense row-major grid; the cell (x, y) lives at y*width+x.
type Canvas []Pixel

// NewCanvas returns an all-white canvas of width*height cells.
func NewCanvas(width, height int) Canvas {
	c := make(Canvas, width*height)
	for i := range c {
		c[i] = White
	}
	return c
}

// Offset returns the index of (x, y) on a canvas of the given width.
func Offset(width, x, y int) int {
	return y*width + x
}

// Clone returns an independent copy of the canvas.
func (c Canvas) Clone() Canvas {
	if c == nil {
		return nil
	}
	out := make(Canvas, len(c))
	copy(out, c)
	return out
}
