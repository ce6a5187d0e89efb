package director

// Width of the accelerating and decelerating phases as a fraction of the
// transition.
const easeEdge = 0.1

// Ease maps linear progress p in [0,1] to eased progress. The first and last
// tenth accelerate and decelerate quadratically; the middle runs at constant
// speed. Slopes match at the joins, Ease(0) = 0 and Ease(1) = 1.
func Ease(p float64) float64 {
	const (
		k = 1 / (2 * easeEdge * (1 - easeEdge)) // quadratic coefficient
		v = 1 / (1 - easeEdge)                  // cruise speed
	)
	switch {
	case p <= 0:
		return 0
	case p >= 1:
		return 1
	case p < easeEdge:
		return k * p * p
	case p > 1-easeEdge:
		q := 1 - p
		return 1 - k*q*q
	default:
		return k*easeEdge*easeEdge + v*(p-easeEdge)
	}
}
