package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/ccdsim/internal/sim"
	"github.com/san-kum/ccdsim/internal/viz"
)

const (
	background = "#0a0a0a"
	padding    = 0.1
)

var palette = []string{"#00a8cc", "#ffd700", "#ff4444", "#00ff88", "#cc66ff", "#ff8800"}

// CanvasToSVG draws every set dot of a braille canvas as a circle, scale
// being the size of one dot.
func CanvasToSVG(w io.Writer, canvas *viz.Canvas, scale float64) error {
	width := float64(canvas.DotsWide()) * scale
	height := float64(canvas.DotsHigh()) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="#00ff00">
`, width, height, width, height, background)

	r := scale * 0.4
	for y := 0; y < canvas.DotsHigh(); y++ {
		for x := 0; x < canvas.DotsWide(); x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}

	sb.WriteString("</g>\n</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

type point struct{ X, Y float64 }

// plane maps a frame position onto the drawing plane. One-dimensional
// systems are drawn against time.
func plane(f sim.Frame, i int) point {
	pos := f.Positions[i]
	if len(pos) == 1 {
		return point{pos[0], f.Time}
	}
	return point{pos[0], pos[1]}
}

// TrajectoriesToSVG draws the path of every particle through frames on
// its first two axes.
func TrajectoriesToSVG(w io.Writer, frames []sim.Frame, width, height int) error {
	if len(frames) < 2 {
		return fmt.Errorf("need at least 2 frames, got %d", len(frames))
	}

	n := len(frames[0].Positions)
	paths := make([][]point, n)
	lo := point{math.Inf(1), math.Inf(1)}
	hi := point{math.Inf(-1), math.Inf(-1)}
	for _, f := range frames {
		if len(f.Positions) != n {
			return fmt.Errorf("frame %d has %d particles, want %d", f.Index, len(f.Positions), n)
		}
		for i := range f.Positions {
			p := plane(f, i)
			paths[i] = append(paths[i], p)
			lo = point{math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)}
			hi = point{math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)}
		}
	}

	rangeX, rangeY := hi.X-lo.X, hi.Y-lo.Y
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	lo.X -= rangeX * padding
	lo.Y -= rangeY * padding
	rangeX *= 1 + 2*padding
	rangeY *= 1 + 2*padding

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	for i, path := range paths {
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, palette[i%len(palette)])
		for j, p := range path {
			x := (p.X - lo.X) / rangeX * float64(width)
			y := float64(height) - (p.Y-lo.Y)/rangeY*float64(height)
			if j == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
