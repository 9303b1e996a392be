package models

// ScoreSnapshot is the set of account signals a security score is computed from.
type ScoreSnapshot struct {
	NomineeCount   int
	SwitchActive   bool
	VaultItemCount int
	SmartDocCount  int
}

type SecurityCheck struct {
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
	Points int    `json:"points"`
	Fix    string `json:"fix,omitempty"`
}

type SecurityScore struct {
	Score  int             `json:"score"`
	Checks []SecurityCheck `json:"checks"`
}
