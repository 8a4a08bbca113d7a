package booking

import "math"

// Refund maps days remaining until travel and the fare paid to the amount
// returned on cancellation. Three tiers: more than 4 days out refunds 90%,
// 1-4 days refunds 50%, day-of or past-date refunds 10%.
func Refund(daysLeft int, fare float64) float64 {
	switch {
	case daysLeft > 4:
		return round2(0.9 * fare)
	case daysLeft >= 1:
		return round2(0.5 * fare)
	default:
		return round2(0.1 * fare)
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
