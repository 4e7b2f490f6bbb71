package services

import "math"

// round rounds v half away from zero to the given number of decimal places
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func floatPtr(v float64) *float64 {
	return &v
}

func sumWeights(weights ...float64) float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	return total
}
