package poster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlog "gorm.io/gorm/logger"

	"github.com/charleshuang3/posterboard/internal/errs"
	"github.com/charleshuang3/posterboard/internal/gormw"
	"github.com/charleshuang3/posterboard/internal/models"
	"github.com/charleshuang3/posterboard/internal/storage"
)

func setupTestService(t *testing.T) (*Service, *gormw.DB) {
	t.Helper()

	db, err := gormw.Open(&gormw.Config{
		LogLevel: gormlog.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	// Two users to exercise ownership checks.
	require.NoError(t, storage.CreateUser(db, &models.User{UserID: 1, Username: "alice", Email: "a@x.com"}))
	require.NoError(t, storage.CreateUser(db, &models.User{UserID: 2, Username: "bob", Email: "b@x.com"}))

	return NewService(db), db
}

func TestCreate(t *testing.T) {
	service, _ := setupTestService(t)

	view, err := service.Create(1, "hello", "first post", models.PosterStatusDraft)
	require.NoError(t, err)
	assert.NotZero(t, view.ID)
	assert.Equal(t, "hello", view.Title)
}

func TestCreateValidation(t *testing.T) {
	service, _ := setupTestService(t)

	testCases := []struct {
		name    string
		title   string
		content string
		status  int
	}{
		{"empty title", "", "body", models.PosterStatusDraft},
		{"empty content", "title", "", models.PosterStatusDraft},
		{"unknown status", "title", "body", 7},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Create(1, tc.title, tc.content, tc.status)
			assert.Equal(t, errs.CodeValidation, errs.From(err).Code)
		})
	}
}

func TestUpdateOwnership(t *testing.T) {
	service, _ := setupTestService(t)

	view, err := service.Create(1, "hello", "body", models.PosterStatusDraft)
	require.NoError(t, err)

	// Owner can update.
	updated, err := service.Update(1, view.ID, "hello2", "body2", models.PosterStatusPublished)
	require.NoError(t, err)
	assert.Equal(t, "hello2", updated.Title)

	// Non-owner gets forbidden.
	_, err = service.Update(2, view.ID, "stolen", "body", models.PosterStatusDraft)
	assert.Equal(t, errs.CodeForbidden, errs.From(err).Code)
}

func TestDeleteOwnership(t *testing.T) {
	service, _ := setupTestService(t)

	view, err := service.Create(1, "hello", "body", models.PosterStatusDraft)
	require.NoError(t, err)

	err = service.Delete(2, view.ID)
	assert.Equal(t, errs.CodeForbidden, errs.From(err).Code)

	require.NoError(t, service.Delete(1, view.ID))

	_, err = service.Get(view.ID)
	assert.Equal(t, errs.CodeNotFound, errs.From(err).Code)
}

func TestMessagesListsOnlyPublished(t *testing.T) {
	service, _ := setupTestService(t)

	_, err := service.Create(1, "draft", "body", models.PosterStatusDraft)
	require.NoError(t, err)
	_, err = service.Create(1, "public", "body", models.PosterStatusPublished)
	require.NoError(t, err)

	page, err := service.Messages(1, 10)
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, "public", page.List[0].Title)
}

func TestListClampsPageParams(t *testing.T) {
	service, _ := setupTestService(t)

	page, err := service.List(-3, 1000, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.PageSize)
}
