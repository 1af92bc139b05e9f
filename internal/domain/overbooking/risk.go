package overbooking

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

func (r RiskLevel) String() string { return string(r) }

func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	default:
		return false
	}
}

func (r RiskLevel) rank() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return 0
	}
}

func (r RiskLevel) Above(other RiskLevel) bool {
	return r.rank() > other.rank()
}

// CurrentPercent is how far past nominal capacity the pool has committed,
// as a percentage of total capacity. Zero while committed stays at or under
// total.
func CurrentPercent(total, committed int32) float64 {
	if total <= 0 {
		return 0
	}
	over := committed - total
	if over < 0 {
		over = 0
	}
	return float64(over) / float64(total) * 100
}

// BucketFor maps the live overbooking percentage to a risk level. The
// thresholds are relative to the configured ceiling (maxPercent), not to
// total capacity: below half the ceiling is low, 80% of the ceiling is high,
// and at or past the ceiling is critical.
func BucketFor(currentPercent float64, maxPercent int32) RiskLevel {
	if maxPercent <= 0 {
		if currentPercent > 0 {
			return RiskCritical
		}
		return RiskLow
	}
	ratio := currentPercent / float64(maxPercent) * 100
	switch {
	case ratio >= 100:
		return RiskCritical
	case ratio >= 80:
		return RiskHigh
	case ratio >= 50:
		return RiskMedium
	default:
		return RiskLow
	}
}
