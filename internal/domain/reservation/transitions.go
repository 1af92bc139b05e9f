package reservation

// PoolEffect is the capacity-pool mutation paired with a transition. The
// lifecycle manager applies the effect and the status change in one atomic
// unit of work.
type PoolEffect string

const (
	EffectNone    PoolEffect = "none"
	EffectReserve PoolEffect = "reserve"
	EffectConfirm PoolEffect = "confirm"
	EffectRelease PoolEffect = "release"
	// EffectReleaseConfirmed hands a consumed seat back to the pool; only the
	// guarded pre-event cancellation of a confirmed reservation uses it.
	EffectReleaseConfirmed PoolEffect = "release_confirmed"
)

// Transition is a single allowed edge in the reservation state machine.
type Transition struct {
	From   Status
	To     Status
	Effect PoolEffect
	// SystemOnly edges are driven by the expiry reaper, never by a caller.
	SystemOnly bool
	// BeforeEventStart guards cancellation of already-consumed seats.
	BeforeEventStart bool
}

var transitionsTable = []Transition{
	{From: StatusDraft, To: StatusPendingPayment, Effect: EffectReserve},

	{From: StatusPendingPayment, To: StatusPaid, Effect: EffectNone},
	// Free events confirm without a payment step.
	{From: StatusPendingPayment, To: StatusConfirmed, Effect: EffectConfirm},
	{From: StatusPendingPayment, To: StatusCancelled, Effect: EffectRelease},
	{From: StatusPendingPayment, To: StatusExpired, Effect: EffectRelease, SystemOnly: true},

	{From: StatusPaid, To: StatusConfirmed, Effect: EffectConfirm},
	{From: StatusPaid, To: StatusCancelled, Effect: EffectRelease},
	{From: StatusPaid, To: StatusRefunded, Effect: EffectNone},

	// The seat was consumed; refunds never re-release capacity.
	{From: StatusConfirmed, To: StatusRefunded, Effect: EffectNone},
	{From: StatusConfirmed, To: StatusCancelled, Effect: EffectReleaseConfirmed, BeforeEventStart: true},
}

// TransitionFor returns the allowed edge for a given source and target
// status, if any.
func TransitionFor(from, to Status) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.To == to {
			return tr, true
		}
	}
	return Transition{}, false
}

// Targets lists the statuses reachable from the given one.
func Targets(from Status) []Status {
	var out []Status
	for _, tr := range transitionsTable {
		if tr.From == from {
			out = append(out, tr.To)
		}
	}
	return out
}
