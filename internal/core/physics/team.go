package physics

type Side string

const (
	SideNone Side = ""
	SideRed  Side = "red"
	SideBlue Side = "blue"
)

// TieBreak decides which index wins the nearest-player search when two
// players have the same score.
type TieBreak int

const (
	// TieFirst keeps the earlier index (strict < comparison).
	TieFirst TieBreak = iota
	// TieLast moves to the later index (<= comparison).
	TieLast
)

// Closest is the result of a nearest-player search. With every player
// excluded, Score is ExcludedScore and Index depends on the TieBreak.
type Closest struct {
	Index int
	Score float64
}

// InRange reports whether the ball is inside the player's reach.
func (c Closest) InRange() bool { return c.Score <= 0 }

// Team is an index-stable list of players. Players are never removed
// mid-trial; exclusion is a flag on the entry so indices stay valid.
type Team struct {
	Side     Side     `json:"side" yaml:"side"`
	Color    string   `json:"color" yaml:"color"`
	TieBreak TieBreak `json:"-" yaml:"-"`
	Players  []Player `json:"players" yaml:"players"`
}

func NewTeam(side Side, color string, tie TieBreak) *Team {
	return &Team{Side: side, Color: color, TieBreak: tie}
}

func (t *Team) AddPlayer(x, y float64) {
	t.Players = append(t.Players, NewPlayer(x, y))
}

func (t *Team) AddKicker(x, y float64) {
	p := NewPlayer(x, y)
	p.Kicker = true
	t.Players = append(t.Players, p)
}

// Reset puts every player back to a standing start.
func (t *Team) Reset() {
	for i := range t.Players {
		t.Players[i].Reset()
	}
}

// Exclude removes player i from contention for the rest of the trial.
func (t *Team) Exclude(i int) {
	if i < 0 || i >= len(t.Players) {
		return
	}
	t.Players[i].Excluded = true
}

// Advance updates every player over dt and returns the one nearest to
// being in range of b.
func (t *Team) Advance(dt float64, b Ball) Closest {
	for i := range t.Players {
		t.Players[i].Update(dt)
	}
	return t.Nearest(b)
}

// Nearest scores players against b without advancing them.
func (t *Team) Nearest(b Ball) Closest {
	best := Closest{Index: 0, Score: ExcludedScore}
	for i := range t.Players {
		best = t.consider(best, i, t.Players[i].CheckIntercept(b))
	}
	return best
}

func (t *Team) consider(best Closest, i int, score float64) Closest {
	switch t.TieBreak {
	case TieLast:
		if score <= best.Score {
			return Closest{Index: i, Score: score}
		}
	default:
		if score < best.Score {
			return Closest{Index: i, Score: score}
		}
	}
	return best
}

// Clone returns a deep copy so a worker can own its own player state.
func (t *Team) Clone() *Team {
	c := *t
	c.Players = make([]Player, len(t.Players))
	copy(c.Players, t.Players)
	return &c
}

// Snapshot copies the current player states.
func (t *Team) Snapshot() []Player {
	out := make([]Player, len(t.Players))
	copy(out, t.Players)
	return out
}
