package reservation

type Status string

const (
	// StatusDraft holds no capacity; optional pre-stage for multi-step forms.
	StatusDraft Status = "draft"
	// StatusPendingPayment has capacity blocked and a hold expiry set.
	StatusPendingPayment Status = "pending_payment"
	// StatusPaid keeps capacity blocked until administrative confirmation.
	StatusPaid Status = "paid"
	// StatusConfirmed permanently consumed its capacity unit.
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
	StatusRefunded  Status = "refunded"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingPayment, StatusPaid,
		StatusConfirmed, StatusCancelled, StatusExpired, StatusRefunded:
		return true
	default:
		return false
	}
}

// Terminal statuses are retained for audit, never physically deleted.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusExpired, StatusRefunded:
		return true
	default:
		return false
	}
}

// Attendance is an orthogonal sub-state reachable only from CONFIRMED; it is
// check-in bookkeeping, not a lifecycle status.
type Attendance string

const (
	AttendanceNone       Attendance = "none"
	AttendanceCheckedIn  Attendance = "checked_in"
	AttendanceCheckedOut Attendance = "checked_out"
)

func (a Attendance) IsValid() bool {
	switch a {
	case AttendanceNone, AttendanceCheckedIn, AttendanceCheckedOut:
		return true
	default:
		return false
	}
}
