package domain

import "math"

// Round rounds half away from zero to the given number of decimal places.
// Import rounding rules: distance/speed 2 places, heart rate/cadence 1 place,
// coordinates 6 places.
func Round(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}

// RoundPtr rounds through a nil-able value, keeping nil nil.
func RoundPtr(v *float64, places int) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v, places)
	return &r
}
