package display

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charleschow/possession-sim/internal/core/physics"
	"github.com/charleschow/possession-sim/internal/core/trial"
)

const (
	dividerHeavy = "========================================================================"
	dividerLight = "~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~"
)

// PrintKick writes a single-kick report: the verdict, every control
// attempt, and each player's final range.
func PrintKick(w io.Writer, speed, direction float64, out trial.Outcome) {
	var b strings.Builder

	fmt.Fprintf(&b, "\n[KICK]  speed %.2f m/s  direction %.3f rad (%.1f°)\n", speed, direction, direction*180/math.Pi)
	fmt.Fprintf(&b, "%s\n", dividerHeavy)
	fmt.Fprintf(&b, "    %-24s%s\n", "Result:", verdict(out))
	fmt.Fprintf(&b, "    %-24s(%.2f, %.2f)  speed %.2f m/s  after %.1fs\n", "Ball:",
		out.Ball.X, out.Ball.Y, out.Ball.Speed, out.Elapsed(out.Steps))
	if c := Color(out.Side, out.Band); c != "" {
		fmt.Fprintf(&b, "    %-24s%s\n", "Colour:", c)
	}

	if len(out.Attempts) > 0 {
		fmt.Fprintf(&b, "%s\n", dividerLight)
		for _, a := range out.Attempts {
			result := "lost control"
			if a.Secured {
				result = "secured"
			}
			fmt.Fprintf(&b, "    t=%4.1fs  %-4s #%-2d  p=%.3f  at (%.1f, %.1f)  %s\n",
				out.Elapsed(a.Step), a.Side, a.Player, a.Probability, a.Ball.X, a.Ball.Y, result)
		}
	}

	if len(out.Red) > 0 || len(out.Blue) > 0 {
		fmt.Fprintf(&b, "%s\n", dividerLight)
		writeRoster(&b, physics.SideRed, out.Red)
		writeRoster(&b, physics.SideBlue, out.Blue)
	}
	fmt.Fprintf(&b, "%s\n", dividerHeavy)

	fmt.Fprint(w, b.String())
}

func verdict(out trial.Outcome) string {
	if out.Conclusive() {
		return fmt.Sprintf("%s ball (p=%.3f, band %d)", strings.ToUpper(string(out.Side)), out.Probability, out.Band)
	}
	switch out.Status {
	case trial.StatusLeftPitch:
		return "ball left the pitch"
	case trial.StatusExhausted:
		return "no one reached the ball"
	}
	return string(out.Status)
}

func writeRoster(b *strings.Builder, side physics.Side, players []physics.Player) {
	for i, p := range players {
		var tags []string
		if p.Kicker {
			tags = append(tags, "kicker")
		}
		if p.Excluded {
			tags = append(tags, "excluded")
		}
		fmt.Fprintf(b, "    %-4s #%-2d  (%4.1f, %5.1f)  reach %5.2f m  %s\n",
			side, i, p.X, p.Y, p.Reach, strings.Join(tags, ","))
	}
}
