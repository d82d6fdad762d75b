package posterapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlog "gorm.io/gorm/logger"

	"github.com/charleshuang3/posterboard/internal/errs"
	"github.com/charleshuang3/posterboard/internal/gormw"
	"github.com/charleshuang3/posterboard/internal/handlers/authapi"
	"github.com/charleshuang3/posterboard/internal/models"
	"github.com/charleshuang3/posterboard/internal/poster"
	"github.com/charleshuang3/posterboard/internal/storage"
	"github.com/charleshuang3/posterboard/internal/tokens"
	"github.com/charleshuang3/posterboard/testdata"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// setupTestRouter wires the poster handlers behind a real access token check
// backed by the test issuer, with two pre-created users.
func setupTestRouter(t *testing.T) (*gin.Engine, *tokens.RS256Issuer, *gormw.DB) {
	t.Helper()

	db, err := gormw.Open(&gormw.Config{
		LogLevel: gormlog.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	require.NoError(t, storage.CreateUser(db, &models.User{UserID: 1, Username: "alice", Email: "a@x.com"}))
	require.NoError(t, storage.CreateUser(db, &models.User{UserID: 2, Username: "bob", Email: "b@x.com"}))

	issuer, err := tokens.NewRS256Issuer(testdata.PrivateKeyPEM, "http://localhost:8080", 30*time.Minute)
	require.NoError(t, err)

	handlers := NewHandlers(poster.NewService(db))

	// The real bearer middleware; its auth service is not needed here.
	requireAuth := authapi.NewHandlers(nil, issuer).RequireAccessToken()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers.RegisterHandlers(router.Group("/"), requireAuth)

	return router, issuer, db
}

func do(t *testing.T, router *gin.Engine, method, path string, body any, bearer string) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	env := &envelope{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), env))
	}
	return rec, env
}

func accessFor(t *testing.T, issuer *tokens.RS256Issuer, userID uint64) string {
	t.Helper()
	token, err := issuer.IssueAccess(userID)
	require.NoError(t, err)
	return token
}

func addPoster(t *testing.T, router *gin.Engine, bearer string, status int) uint {
	t.Helper()
	rec, env := do(t, router, http.MethodPost, "/poster/add", gin.H{
		"title":   "hello",
		"content": "body",
		"status":  status,
	}, bearer)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.ID
}

func TestPosterRoutesRequireAuth(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/poster/add"},
		{http.MethodGet, "/poster/list"},
		{http.MethodGet, "/poster/1"},
		{http.MethodPut, "/poster/1"},
		{http.MethodDelete, "/poster/1"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec, _ := do(t, router, p.method, p.path, nil, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAddAndDetail(t *testing.T) {
	router, issuer, _ := setupTestRouter(t)
	alice := accessFor(t, issuer, 1)

	id := addPoster(t, router, alice, models.PosterStatusDraft)

	rec, env := do(t, router, http.MethodGet, fmt.Sprintf("/poster/%d", id), nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "hello", data.Title)
	assert.Equal(t, "body", data.Content)
}

func TestAddValidation(t *testing.T) {
	router, issuer, _ := setupTestRouter(t)
	alice := accessFor(t, issuer, 1)

	rec, env := do(t, router, http.MethodPost, "/poster/add", gin.H{
		"title":   "hello",
		"content": "body",
		"status":  7,
	}, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errs.CodeValidation, env.Code)
}

func TestUpdateAndOwnership(t *testing.T) {
	router, issuer, _ := setupTestRouter(t)
	alice := accessFor(t, issuer, 1)
	bob := accessFor(t, issuer, 2)

	id := addPoster(t, router, alice, models.PosterStatusDraft)

	body := gin.H{"title": "hello2", "content": "body2", "status": models.PosterStatusPublished}

	rec, env := do(t, router, http.MethodPut, fmt.Sprintf("/poster/%d", id), body, bob)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, errs.CodeForbidden, env.Code)

	rec, _ = do(t, router, http.MethodPut, fmt.Sprintf("/poster/%d", id), body, alice)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDelete(t *testing.T) {
	router, issuer, _ := setupTestRouter(t)
	alice := accessFor(t, issuer, 1)

	id := addPoster(t, router, alice, models.PosterStatusDraft)

	rec, _ := do(t, router, http.MethodDelete, fmt.Sprintf("/poster/%d", id), nil, alice)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := do(t, router, http.MethodGet, fmt.Sprintf("/poster/%d", id), nil, alice)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errs.CodeNotFound, env.Code)
}

func TestListAndMessages(t *testing.T) {
	router, issuer, _ := setupTestRouter(t)
	alice := accessFor(t, issuer, 1)

	addPoster(t, router, alice, models.PosterStatusDraft)
	addPoster(t, router, alice, models.PosterStatusPublished)

	rec, env := do(t, router, http.MethodGet, "/poster/list?page=1&page_size=10", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		List  []json.RawMessage `json:"list"`
		Total int64             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.EqualValues(t, 2, page.Total)

	// The public message board lists only published posters, no auth needed.
	rec, env = do(t, router, http.MethodGet, "/message", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.EqualValues(t, 1, page.Total)
}
