package tui

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Shimmer sweeps a soft highlight across a line of text, one frame at a time
type Shimmer struct {
	// position of the highlight as a fraction of the text length
	center float64
	// highlight width as a fraction of the text length
	width float64
	// fraction of the sweep advanced per frame
	step float64

	pauseFrames int
	paused      int

	trueColor bool
}

// NewShimmer returns a shimmer that takes about eighteen frames per sweep
func NewShimmer() *Shimmer {
	return &Shimmer{
		center:      -0.25,
		width:       0.25,
		step:        0.1,
		pauseFrames: 5,
		trueColor:   os.Getenv("COLORTERM") == "truecolor",
	}
}

// Advance moves the highlight forward one frame, pausing between sweeps
func (s *Shimmer) Advance() {
	if s.paused > 0 {
		s.paused--
		return
	}

	s.center += s.step
	if s.center > 1+s.width {
		s.center = -s.width
		s.paused = s.pauseFrames
	}
}

// Render colors text with the highlight at its current position
func (s *Shimmer) Render(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return ""
	}

	pos := s.center * float64(n)
	sigma := math.Max(s.width*float64(n)/2, 1)

	var b strings.Builder
	for i, r := range runes {
		dx := float64(i) - pos
		var color string
		if s.trueColor {
			color = blend(math.Exp(-(dx * dx) / (2 * sigma * sigma)))
		} else if math.Abs(dx) <= sigma {
			color = ColorAccentBright
		} else {
			color = ColorSecondaryText
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(r)))
	}
	return b.String()
}

// blend mixes the secondary text color toward a pale violet by weight in [0,1]
func blend(weight float64) string {
	weight = math.Min(math.Max(weight, 0), 1)

	mix := func(base, highlight int) int {
		return int(math.Round(float64(base)*(1-weight) + float64(highlight)*weight))
	}
	// #B1B8C7 to #EAE6FF
	return fmt.Sprintf("#%02X%02X%02X", mix(0xB1, 0xEA), mix(0xB8, 0xE6), mix(0xC7, 0xFF))
}
