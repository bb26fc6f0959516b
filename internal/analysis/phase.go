package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/ccdsim/internal/sim"
)

type Point struct{ X, Y float64 }

// PhasePortrait holds position (X) against velocity (Y) samples.
type PhasePortrait struct {
	Particle, Axis int
	Points         []Point
}

// Phase collects the phase trajectory of one particle along one axis.
func Phase(frames []sim.Frame, particle, axis int) (*PhasePortrait, error) {
	portrait := &PhasePortrait{
		Particle: particle,
		Axis:     axis,
		Points:   make([]Point, 0, len(frames)),
	}

	for _, f := range frames {
		if particle < 0 || particle >= len(f.Positions) {
			return nil, fmt.Errorf("frame %d has no particle %d", f.Index, particle)
		}
		pos, vel := f.Positions[particle], f.Velocities[particle]
		if axis < 0 || axis >= len(pos) || axis >= len(vel) {
			return nil, fmt.Errorf("frame %d has no axis %d", f.Index, axis)
		}
		portrait.Points = append(portrait.Points, Point{X: pos[axis], Y: vel[axis]})
	}

	return portrait, nil
}

// ASCII plots the portrait on a width x height grid of characters, with
// the axes drawn where they are in view.
func (p *PhasePortrait) ASCII(width, height int) string {
	if len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
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

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	for _, pt := range p.Points {
		grid[row(pt.Y)][col(pt.X)] = '•'
	}

	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := range grid {
			if grid[r][c] == ' ' {
				grid[r][c] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := range grid[r] {
			if grid[r][c] == ' ' {
				grid[r][c] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}
