package referenceframe

import (
	"math"
	"math/rand"
)

// Limit represents the limits of motion for a single variable.
type Limit struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Range returns Max - Min.
func (l Limit) Range() float64 {
	return l.Max - l.Min
}

// Contains reports whether v is within the limit, inclusive.
func (l Limit) Contains(v float64) bool {
	return v >= l.Min && v <= l.Max
}

// Clamp returns v restricted to the limit.
func (l Limit) Clamp(v float64) float64 {
	return math.Max(l.Min, math.Min(l.Max, v))
}

// Intersect returns the overlap of two limits. ok is false if they do not overlap.
func (l Limit) Intersect(o Limit) (Limit, bool) {
	out := Limit{Min: math.Max(l.Min, o.Min), Max: math.Min(l.Max, o.Max)}
	return out, out.Min <= out.Max
}

// Sample draws a value uniformly from the limit. Infinite limits default to [-999, 999].
func (l Limit) Sample(rSeed *rand.Rand) float64 {
	lo, hi := l.Min, l.Max
	if math.IsInf(lo, -1) {
		lo = -999
	}
	if math.IsInf(hi, 1) {
		hi = 999
	}
	return rSeed.Float64()*(hi-lo) + lo
}

// WrapAngle maps an angle into (-pi, pi].
func WrapAngle(angle float64) float64 {
	wrapped := math.Mod(angle+math.Pi, 2*math.Pi)
	if wrapped <= 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}
