package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlog "gorm.io/gorm/logger"

	"github.com/charleshuang3/posterboard/internal/gormw"
	"github.com/charleshuang3/posterboard/internal/models"
)

func setupTestDB(t *testing.T) *gormw.DB {
	t.Helper()
	db, err := gormw.Open(&gormw.Config{
		LogLevel: gormlog.Silent,
	})
	require.NoError(t, err)

	err = db.Migrate()
	require.NoError(t, err)

	return db
}

func TestFingerprintIsDeterministicAndOneWay(t *testing.T) {
	fp := Fingerprint("some-raw-token")
	assert.Equal(t, fp, Fingerprint("some-raw-token"))
	assert.NotEqual(t, fp, Fingerprint("other-raw-token"))
	assert.NotEqual(t, "some-raw-token", fp)
	// sha256 hex
	assert.Len(t, fp, 64)
}

func TestRecordLoginAndFindActive(t *testing.T) {
	db := setupTestDB(t)

	record, err := RecordLogin(db, 1, "raw-token", time.Hour, "ios")
	require.NoError(t, err)
	assert.Equal(t, Fingerprint("raw-token"), record.Fingerprint)
	assert.False(t, record.Revoked)
	assert.Equal(t, "ios", record.Device)

	found, err := FindActive(db, 1, "raw-token")
	require.NoError(t, err)
	assert.Equal(t, record.Fingerprint, found.Fingerprint)

	// Wrong user does not see it.
	_, err = FindActive(db, 2, "raw-token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Unknown token looks exactly like a revoked one.
	_, err = FindActive(db, 1, "never-issued")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRotate(t *testing.T) {
	db := setupTestDB(t)

	record, err := RecordLogin(db, 1, "old-token", time.Hour, "web")
	require.NoError(t, err)

	successor, err := Rotate(db, record, "new-token", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, Fingerprint("new-token"), successor.Fingerprint)
	assert.Equal(t, uint(1), successor.UserID)
	assert.Equal(t, "web", successor.Device)

	// Old record is revoked, new one is active.
	_, err = FindActive(db, 1, "old-token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = FindActive(db, 1, "new-token")
	assert.NoError(t, err)

	// Exactly two rows exist for the lineage: one revoked, one active.
	var count int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Where("user_id = ?", 1).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestRotateIsOneTimeUse(t *testing.T) {
	db := setupTestDB(t)

	record, err := RecordLogin(db, 1, "old-token", time.Hour, "")
	require.NoError(t, err)

	_, err = Rotate(db, record, "new-token-1", time.Hour)
	require.NoError(t, err)

	// A second rotation of the same record loses the guarded update and must
	// not insert a successor.
	stale := &models.RefreshToken{Fingerprint: Fingerprint("old-token"), UserID: 1}
	_, err = Rotate(db, stale, "new-token-2", time.Hour)
	assert.ErrorIs(t, err, ErrNotActive)

	_, err = FindActive(db, 1, "new-token-2")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestRevokeIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	record, err := RecordLogin(db, 1, "raw-token", time.Hour, "")
	require.NoError(t, err)

	require.NoError(t, Revoke(db, record))
	assert.True(t, record.Revoked)

	// Second revoke is a no-op.
	require.NoError(t, Revoke(db, record))

	_, err = FindActive(db, 1, "raw-token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRevokeExpired(t *testing.T) {
	db := setupTestDB(t)

	_, err := RecordLogin(db, 1, "live-token", time.Hour, "")
	require.NoError(t, err)
	_, err = RecordLogin(db, 1, "dead-token", -time.Hour, "")
	require.NoError(t, err)

	require.NoError(t, RevokeExpired(db))

	_, err = FindActive(db, 1, "live-token")
	assert.NoError(t, err)
	_, err = FindActive(db, 1, "dead-token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Expired record is revoked, not deleted.
	var count int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}
