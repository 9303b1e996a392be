// Package common contains shared constants and sentinel errors used across
// Vasihat Nama server components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// AdminSecretHeaderName is the HTTP header carrying the admin secret.
const AdminSecretHeaderName = "X-Admin-Secret"

// DefaultCheckInFrequencyDays is applied to new users when the
// configuration does not override it.
const DefaultCheckInFrequencyDays = 30
