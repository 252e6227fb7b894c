package physics

const (
	// RestingReach is the radius a standing player covers at t=0.
	RestingReach = 0.5

	playerAcceleration = 2.0 // m/s²
	playerMaxSpeed     = 8.0 // m/s

	// ExcludedScore is returned by CheckIntercept for excluded players. It
	// also seeds the nearest-player search, so an excluded player can never
	// win it outright.
	ExcludedScore = 10000.0
)

// Player stands still for the whole trial; only the radius it could have
// run to (Reach) grows with time.
type Player struct {
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Speed    float64 `json:"speed" yaml:"-"`
	Reach    float64 `json:"reach" yaml:"-"`
	Excluded bool    `json:"excluded" yaml:"-"`
	Kicker   bool    `json:"kicker,omitempty" yaml:"kicker,omitempty"`
}

func NewPlayer(x, y float64) Player {
	return Player{X: x, Y: y, Reach: RestingReach}
}

// Reset returns the player to a standing start with no exclusion.
func (p *Player) Reset() {
	p.Reach = RestingReach
	p.Speed = 0
	p.Excluded = false
}

// Update accelerates at 2 m/s² up to 8 m/s and grows the reach by the new
// speed over dt (forward Euler; the reach curve depends on this exact order).
func (p *Player) Update(dt float64) {
	p.Speed += playerAcceleration * dt
	if p.Speed > playerMaxSpeed {
		p.Speed = playerMaxSpeed
	}
	if p.Speed < 0 {
		p.Speed = 0
	}
	p.Reach += p.Speed * dt
}

// CheckIntercept returns squared distance to the ball minus squared reach.
// Negative means the ball is inside the player's range.
func (p Player) CheckIntercept(b Ball) float64 {
	if p.Excluded {
		return ExcludedScore
	}
	dx := p.X - b.X
	dy := p.Y - b.Y
	return dx*dx + dy*dy - p.Reach*p.Reach
}
