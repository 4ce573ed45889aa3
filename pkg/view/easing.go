package view

// EaseInOutQuad interpolates from from to to at progress t in [0, 1] with
// quadratic acceleration and deceleration.
func EaseInOutQuad(t, from, to float64) float64 {
	d := to - from
	t *= 2
	if t < 1 {
		return d/2*t*t + from
	}
	t--
	return -d/2*(t*(t-2)-1) + from
}

// EaseInOutCubic is the cubic counterpart of [EaseInOutQuad].
func EaseInOutCubic(t, from, to float64) float64 {
	d := to - from
	t *= 2
	if t < 1 {
		return d/2*t*t*t + from
	}
	t -= 2
	return d/2*(t*t*t+2) + from
}
