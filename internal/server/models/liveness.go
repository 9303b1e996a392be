package models

import "time"

// CheckInMethod records how a user proved liveness.
type CheckInMethod string

const (
	CheckInManual    CheckInMethod = "manual"
	CheckInLogin     CheckInMethod = "login"
	CheckInBiometric CheckInMethod = "biometric"
	CheckInOther     CheckInMethod = "other"
)

// NormalizeCheckInMethod maps an empty method to manual and anything
// unrecognised to other.
func NormalizeCheckInMethod(m string) CheckInMethod {
	switch CheckInMethod(m) {
	case "":
		return CheckInManual
	case CheckInManual, CheckInLogin, CheckInBiometric, CheckInOther:
		return CheckInMethod(m)
	default:
		return CheckInOther
	}
}

// HeartbeatLog is an immutable audit record of a single check-in.
type HeartbeatLog struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	CheckedInAt time.Time     `json:"checked_in_at"`
	Method      CheckInMethod `json:"method"`
}

// LivenessStatus is the read view of a user's liveness record.
type LivenessStatus struct {
	LastCheckIn          time.Time `json:"last_check_in"`
	CheckInFrequencyDays int       `json:"check_in_frequency_days"`
	SwitchActive         bool      `json:"dead_mans_switch_active"`
	NextDeadline         time.Time `json:"next_deadline"`
	Overdue              bool      `json:"overdue"`
}

// StatusOf derives the liveness view of u at now.
func StatusOf(u *User, now time.Time) *LivenessStatus {
	return &LivenessStatus{
		LastCheckIn:          u.LastCheckIn,
		CheckInFrequencyDays: u.CheckInFrequencyDays,
		SwitchActive:         u.SwitchActive,
		NextDeadline:         u.NextDeadline(),
		Overdue:              u.IsLapsed(now),
	}
}
