package models

import "time"

// Nominee is a person designated by a user to inherit vault access.
// AccessGranted only ever transitions from false to true.
type Nominee struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Relationship    string     `json:"relationship"`
	AccessGranted   bool       `json:"access_granted"`
	AccessGrantedAt *time.Time `json:"access_granted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
