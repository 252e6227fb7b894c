package display

import (
	"fmt"
	"strconv"

	"github.com/charleschow/possession-sim/internal/core/intercept"
	"github.com/charleschow/possession-sim/internal/core/physics"
)

// shades maps each confidence band to a two-digit hex channel value:
// darker shade, more confident.
var shades = [intercept.BandCount]string{"00", "22", "33", "44", "55", "66", "77", "88", "99", "AA", "BB", "DD"}

// Shade returns the hex channel for a band.
func Shade(b intercept.Band) string {
	if b < 0 || int(b) >= len(shades) {
		return shades[intercept.WeakestBand]
	}
	return shades[b]
}

// Color returns the ball colour for a resolved side: #FFssss for red,
// #ssssFF for blue. Inconclusive outcomes have no colour.
func Color(side physics.Side, b intercept.Band) string {
	s := Shade(b)
	switch side {
	case physics.SideRed:
		return "#FF" + s + s
	case physics.SideBlue:
		return "#" + s + s + "FF"
	}
	return ""
}

// ansiBackground renders a #RRGGBB colour as a 24-bit ANSI background.
func ansiBackground(hex string) string {
	if len(hex) != 7 {
		return ""
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", v>>16&0xFF, v>>8&0xFF, v&0xFF)
}

const ansiReset = "\x1b[0m"
