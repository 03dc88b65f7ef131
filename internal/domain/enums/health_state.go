package enums

// HealthState describes how stale an unanswered conversation is from the
// perspective of the user who owes the reply. NudgeWindow is a dismissable
// soft prompt; Checkpoint and Blocked share the same 72h threshold and
// differ only in presentation strictness.
type HealthState string

const (
	HealthStateActive     HealthState = "active"
	HealthStateNudge      HealthState = "nudge_window"
	HealthStateCheckpoint HealthState = "checkpoint"
	HealthStateBlocked    HealthState = "blocked"
	HealthStateClosed     HealthState = "closed"
)
