package models

// OverdueUser identifies a lapsed user in a sweep report.
type OverdueUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"-"`
}

// SweepFailure records a user whose nominees could not be granted access.
type SweepFailure struct {
	UserID int64  `json:"user_id"`
	Error  string `json:"error"`
}

// SweepReport is the outcome of one dead man's switch sweep.
type SweepReport struct {
	TriggeredCount int            `json:"triggered_count"`
	OverdueUsers   []OverdueUser  `json:"overdue_users"`
	NewlyGranted   []Nominee      `json:"newly_granted"`
	Failures       []SweepFailure `json:"failures,omitempty"`
}
