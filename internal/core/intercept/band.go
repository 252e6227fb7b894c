package intercept

// Band is a discretised confidence level. Band 0 is the most confident;
// each following band covers strictly lower probabilities.
type Band int

// bandFloors are exclusive lower bounds, most confident first. Anything at
// or below the last floor falls into the final band.
var bandFloors = [...]float64{0.98, 0.95, 0.90, 0.85, 0.80, 0.75, 0.70, 0.65, 0.60, 0.55, 0.52}

// BandCount is the number of distinct bands.
const BandCount = len(bandFloors) + 1

// WeakestBand is the band for near coin-flips.
const WeakestBand = Band(BandCount - 1)

func BandFor(prob float64) Band {
	for i, floor := range bandFloors {
		if prob > floor {
			return Band(i)
		}
	}
	return WeakestBand
}

// Floor returns the exclusive lower probability bound of the band, or 0
// for the weakest band.
func (b Band) Floor() float64 {
	if b < 0 || int(b) >= len(bandFloors) {
		return 0
	}
	return bandFloors[b]
}
