package display

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/charleschow/possession-sim/internal/core/intercept"
	"github.com/charleschow/possession-sim/internal/core/physics"
	"github.com/charleschow/possession-sim/internal/core/sweep"
	"github.com/charleschow/possession-sim/internal/core/trial"
)

// strongBand is the weakest band still drawn with an upper-case glyph.
const strongBand = intercept.Band(3)

// Glyph is the single-character rendering of a cell.
func Glyph(c sweep.Cell) byte {
	switch c.Status {
	case trial.StatusLeftPitch:
		return '.'
	case trial.StatusExhausted:
		return '?'
	}
	strong := c.Band <= strongBand
	switch {
	case c.Side == physics.SideRed && strong:
		return 'R'
	case c.Side == physics.SideRed:
		return 'r'
	case strong:
		return 'B'
	default:
		return 'b'
	}
}

// PrintMap draws every stride-th direction as a row of speeds, slowest on
// the left. With colour set, each cell gets its possession colour as an
// ANSI background.
func PrintMap(w io.Writer, m *sweep.Map, stride int, colour bool) {
	if stride < 1 {
		stride = 1
	}

	var b strings.Builder
	header := []byte(strings.Repeat(" ", sweep.Speeds))
	for i := 0; i < sweep.Speeds; i += 20 {
		copy(header[i:], strconv.Itoa(i/4))
	}
	fmt.Fprintf(&b, "%9s%s\n", "m/s ", header)

	for j := 0; j < sweep.Directions; j += stride {
		fmt.Fprintf(&b, "%7.1f° ", sweep.Direction(j)*180/math.Pi)
		for i := 0; i < sweep.Speeds; i++ {
			c := m.At(j, i)
			if colour {
				if bg := ansiBackground(Color(c.Side, c.Band)); bg != "" {
					b.WriteString(bg)
					b.WriteByte(Glyph(c))
					b.WriteString(ansiReset)
					continue
				}
			}
			b.WriteByte(Glyph(c))
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "R/B red/blue p>%.2f  r/b contested  . left pitch  ? unresolved\n", strongBand.Floor())

	fmt.Fprint(w, b.String())
}

// PrintSummary writes the sweep tallies.
func PrintSummary(w io.Writer, id string, s sweep.Summary, elapsed time.Duration) {
	pct := func(n int) float64 {
		if s.Total == 0 {
			return 0
		}
		return 100 * float64(n) / float64(s.Total)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", dividerHeavy)
	fmt.Fprintf(&b, "  Sweep %s  (%s cells in %s)\n", id, humanize.Comma(int64(s.Total)), elapsed.Round(time.Millisecond))
	fmt.Fprintf(&b, "    %-24s%8s  %5.1f%%\n", "Red possession:", humanize.Comma(int64(s.Red)), pct(s.Red))
	fmt.Fprintf(&b, "    %-24s%8s  %5.1f%%\n", "Blue possession:", humanize.Comma(int64(s.Blue)), pct(s.Blue))
	fmt.Fprintf(&b, "    %-24s%8s  %5.1f%%\n", "Left pitch:", humanize.Comma(int64(s.LeftPitch)), pct(s.LeftPitch))
	if s.Exhausted > 0 {
		fmt.Fprintf(&b, "    %-24s%8s  %5.1f%%\n", "Unresolved:", humanize.Comma(int64(s.Exhausted)), pct(s.Exhausted))
	}
	fmt.Fprintf(&b, "    %-24s%8s\n", "Lost controls:", humanize.Comma(int64(s.Exclusions)))
	fmt.Fprintf(&b, "    %-24s%8.3f\n", "Mean confidence:", s.MeanConfidence)
	fmt.Fprintf(&b, "%s\n", dividerHeavy)

	fmt.Fprint(w, b.String())
}

// Tally accumulates streamed cells into a running summary. Safe for
// concurrent use.
type Tally struct {
	mu    sync.Mutex
	cells []sweep.Cell
}

func (t *Tally) OnCell(c sweep.Cell) {
	t.mu.Lock()
	t.cells = append(t.cells, c)
	t.mu.Unlock()
}

// Summary tallies the cells seen so far.
func (t *Tally) Summary() sweep.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := sweep.Map{Cells: t.cells}
	return m.Summary()
}

// Reset drops all cells, ready for the next sweep.
func (t *Tally) Reset() {
	t.mu.Lock()
	t.cells = nil
	t.mu.Unlock()
}
