package physics

// Anfield dimensions.
const (
	PitchWidth  = 68.0
	PitchHeight = 101.0
)

// Pitch is the legal play area, origin at the top-left corner.
type Pitch struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

func DefaultPitch() Pitch {
	return Pitch{Width: PitchWidth, Height: PitchHeight}
}

// Contains reports whether (x, y) lies on the pitch, boundaries included.
func (p Pitch) Contains(x, y float64) bool {
	return x >= 0 && x <= p.Width && y >= 0 && y <= p.Height
}
