package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/charleshuang3/posterboard/internal/gormw"
	"github.com/charleshuang3/posterboard/internal/models"
)

var (
	logger = log.With().Str("component", "storage").Logger()

	// ErrNotActive is returned by Rotate when the record was revoked between
	// the caller's lookup and the guarded update, i.e. a concurrent rotation
	// won.
	ErrNotActive = errors.New("refresh token record is not active")
)

// Fingerprint returns the lookup key stored for a raw refresh token. It is a
// plain sha256, not a salted password hash: the same raw token must always
// map to the same key.
func Fingerprint(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// RecordLogin inserts a new active record for a freshly issued refresh token.
func RecordLogin(db *gormw.DB, userID uint, rawToken string, ttl time.Duration, device string) (*models.RefreshToken, error) {
	record := &models.RefreshToken{
		Fingerprint: Fingerprint(rawToken),
		UserID:      userID,
		Device:      device,
		ExpiresAt:   time.Now().Add(ttl),
	}
	if err := db.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// FindActive looks up the non-revoked record for (userID, rawToken). A
// revoked record and a missing record both return gorm.ErrRecordNotFound;
// callers must not be able to tell them apart.
func FindActive(db *gormw.DB, userID uint, rawToken string) (*models.RefreshToken, error) {
	record := &models.RefreshToken{}
	err := db.Where("fingerprint = ? AND user_id = ? AND revoked = ?", Fingerprint(rawToken), userID, false).
		First(record).Error
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Rotate revokes record and inserts the successor for newRawToken in a single
// transaction. The revoke is guarded on revoked = false, so of two concurrent
// rotations of the same record exactly one succeeds; the loser gets
// ErrNotActive.
func Rotate(db *gormw.DB, record *models.RefreshToken, newRawToken string, ttl time.Duration) (*models.RefreshToken, error) {
	successor := &models.RefreshToken{
		Fingerprint: Fingerprint(newRawToken),
		UserID:      record.UserID,
		Device:      record.Device,
		ExpiresAt:   time.Now().Add(ttl),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("fingerprint = ? AND revoked = ?", record.Fingerprint, false).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrNotActive
		}
		return tx.Create(successor).Error
	})
	if err != nil {
		return nil, err
	}

	record.Revoked = true
	return successor, nil
}

// Revoke flips the record to revoked. Revoking an already revoked record is
// a no-op, not an error.
func Revoke(db *gormw.DB, record *models.RefreshToken) error {
	if err := db.Model(record).Update("revoked", true).Error; err != nil {
		return err
	}
	record.Revoked = true
	return nil
}

// RevokeExpired flips all expired-but-active records to revoked. Records are
// never deleted; they are kept as an audit trail.
func RevokeExpired(db *gormw.DB) error {
	return db.Model(&models.RefreshToken{}).
		Where("revoked = ? AND expires_at < ?", false, time.Now()).
		Update("revoked", true).Error
}

// RegisterRefreshTokensSweeper schedules a daily pass marking expired
// refresh tokens revoked, so FindActive stays cheap on long lived users.
func RegisterRefreshTokensSweeper(scheduler gocron.Scheduler, db *gormw.DB) {
	_, _ = scheduler.NewJob(
		gocron.CronJob(
			// 4am Daily
			"0 4 * * *",
			false,
		),
		gocron.NewTask(
			func() {
				logger.Info().Msg("Revoking expired refresh tokens")
				if err := RevokeExpired(db); err != nil {
					logger.Error().Err(err).Msg("Failed to revoke expired refresh tokens")
				}
			},
		),
	)
}
