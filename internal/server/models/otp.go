package models

import "time"

// OTP purposes.
const (
	OTPPurposeLogin    = "login"
	OTPPurposeRegister = "register"
)

// OTP log statuses.
const (
	OTPStatusSent     = "sent"
	OTPStatusFailed   = "failed"
	OTPStatusVerified = "verified"
)

type OTPLog struct {
	ID        int64     `json:"id"`
	Mobile    string    `json:"mobile"`
	Purpose   string    `json:"purpose"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminStats are the totals shown on the admin dashboard.
type AdminStats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
	OTPs  int64 `json:"otps"`
}
