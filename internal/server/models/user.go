// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account holder together with its liveness record.
//
// LastCheckIn never moves backwards; CheckInFrequencyDays is always positive.
type User struct {
	ID                   int64     `json:"id"`
	MobileNumber         string    `json:"mobile_number"`
	Name                 string    `json:"name"`
	Email                string    `json:"email"`
	PublicKey            string    `json:"public_key,omitempty"`
	EncryptedPrivateKey  string    `json:"encrypted_private_key,omitempty"`
	LastCheckIn          time.Time `json:"last_check_in"`
	CheckInFrequencyDays int       `json:"check_in_frequency_days"`
	SwitchActive         bool      `json:"dead_mans_switch_active"`
	CreatedAt            time.Time `json:"created_at"`
}

// NextDeadline is the moment after which the user counts as lapsed. A day is
// a fixed 24 hours, matching INTERVAL '24 hours' in the lapse query, so DST
// changes never shift it.
func (u *User) NextDeadline() time.Time {
	return u.LastCheckIn.Add(time.Duration(u.CheckInFrequencyDays) * 24 * time.Hour)
}

// IsLapsed reports whether the switch is armed and the deadline is strictly
// before now. It mirrors the predicate used by the lapse query.
func (u *User) IsLapsed(now time.Time) bool {
	return u.SwitchActive && u.NextDeadline().Before(now)
}
