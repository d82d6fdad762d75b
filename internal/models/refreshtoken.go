package models

import "time"

// RefreshToken is the server side record of an issued refresh token. Only a
// one-way fingerprint of the raw token is stored, never the token itself.
// Rows are flipped to Revoked on rotation, logout or expiry and kept as an
// audit trail; they are only removed when the owning user is deleted.
type RefreshToken struct {
	Fingerprint string `gorm:"primarykey"`
	UserID      uint   `gorm:"index"` // with index, user easy to find all refresh token them have
	Device      string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Revoked     bool
}

func (r *RefreshToken) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
