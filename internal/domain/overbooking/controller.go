package overbooking

import "event-capacity/internal/domain/capacity"

// Decision is the outcome of one admission check.
type Decision struct {
	Granted    bool
	Overbooked bool
	// Level is the risk level after the admission (or the current level on
	// denial). Persisted by the caller on every admission.
	Level RiskLevel
	// Escalated reports an upward threshold crossing; the alert-admins hook
	// fires exactly once per crossing, not once per registration.
	Escalated bool
}

// Admit decides whether quantity units may be granted past nominal capacity
// out of the overbooking margin. cfg may be nil (pool never opted in).
//
// A CRITICAL pool blocks further overbooked admissions. The admission that
// itself crosses into CRITICAL is still honored; it is the one that crosses
// the line, and the resulting escalation is the caller's high-priority alert.
func Admit(pool *capacity.Pool, cfg *Config, quantity int32) Decision {
	if pool.IsUnlimited() {
		// Unlimited pools never get here through the normal path, but the
		// answer is trivially yes and never overbooked.
		return Decision{Granted: true, Level: RiskLow}
	}
	total := *pool.Total()

	if cfg == nil || !cfg.IsActive() {
		return Decision{Granted: false, Level: RiskLow}
	}

	current := BucketFor(CurrentPercent(total, pool.Committed()), cfg.MaxPercent())
	if current == RiskCritical {
		return Decision{Granted: false, Level: RiskCritical}
	}

	deficit := quantity - pool.Available()
	margin := cfg.Margin(total)
	overCommitted := pool.Committed() - total
	if overCommitted < 0 {
		overCommitted = 0
	}
	if deficit > margin-overCommitted {
		return Decision{Granted: false, Level: current}
	}

	after := BucketFor(CurrentPercent(total, pool.Committed()+quantity), cfg.MaxPercent())
	return Decision{
		Granted:    true,
		Overbooked: true,
		Level:      after,
		Escalated:  after.Above(cfg.RiskLevel()),
	}
}

// Reassess recomputes the level after a non-overbooked admission or a
// release; the persisted level is always a pure function of the live
// percentage, never a hook-triggered correction.
func Reassess(pool *capacity.Pool, cfg *Config) Decision {
	if cfg == nil || pool.IsUnlimited() {
		return Decision{Level: RiskLow}
	}
	level := BucketFor(CurrentPercent(*pool.Total(), pool.Committed()), cfg.MaxPercent())
	return Decision{
		Level:     level,
		Escalated: level.Above(cfg.RiskLevel()),
	}
}
