package scoring

// Eudaimonia maps a normalized corruption reading and a normalized
// tension reading onto an inverse 0-100 wellbeing scale: clean, calm
// societies score high.
func Eudaimonia(normCorruption, normTension float64) float64 {
	nc := clamp(normCorruption, 0, 1)
	nt := clamp(normTension, 0, 1)

	score := 100.0 - ((nc+nt)/2.0)*100.0
	return clamp(score, 0, 100)
}
