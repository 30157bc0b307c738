package stream

import "time"

// ReconnectDelay returns min(initial * 2^attempt, max).
func ReconnectDelay(attempt int, initial, max time.Duration) time.Duration {
	d := initial
	for i := 0; i < attempt; i++ {
		if d >= max {
			return max
		}
		d *= 2
	}
	if d > max {
		return max
	}
	return d
}
