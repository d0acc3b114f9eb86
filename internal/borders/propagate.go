package borders

// Pressure is the neighborhood spillover term for one entity: the
// arithmetic mean of its neighbors' first-pass instability values.
// Neighbors without a first-pass result are skipped entirely, not
// counted as zero; an entity with no scored neighbors gets 0.
func Pressure(entityCode string, graph Graph, firstPass map[string]float64) float64 {
	sum, n := 0.0, 0
	for _, neighbor := range graph.Neighbors(entityCode) {
		v, ok := firstPass[neighbor]
		if !ok {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
