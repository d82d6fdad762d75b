// Package poster implements the message board resource: draft and published
// posters owned by users, plus the public message listing.
package poster

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/charleshuang3/posterboard/internal/errs"
	"github.com/charleshuang3/posterboard/internal/gormw"
	"github.com/charleshuang3/posterboard/internal/models"
	"github.com/charleshuang3/posterboard/internal/storage"
)

var (
	logger = log.With().Str("component", "poster").Logger()
)

const (
	maxPageSize = 100
	maxTitleLen = 200
)

type Service struct {
	db *gormw.DB
}

func NewService(db *gormw.DB) *Service {
	return &Service{db: db}
}

// Page is one page of poster views.
type Page struct {
	List     []*models.PosterView `json:"list"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Total    int64                `json:"total"`
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func (s *Service) owner(userID uint64) (*models.User, error) {
	user, err := storage.GetUserByUserID(s.db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("user not found")
		}
		logger.Error().Err(err).Msg("Database error during owner lookup")
		return nil, errs.Internal("operation failed, please retry")
	}
	return user, nil
}

// Create adds a poster owned by userID (the external identity).
func (s *Service) Create(userID uint64, title, content string, status int) (*models.PosterView, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if title == "" {
		return nil, errs.Validation("title must not be empty")
	}
	if len(title) > maxTitleLen {
		return nil, errs.Validation("title too long")
	}
	if content == "" {
		return nil, errs.Validation("content must not be empty")
	}
	if !models.ValidPosterStatuses.Contains(status) {
		return nil, errs.Validation("invalid status")
	}

	user, err := s.owner(userID)
	if err != nil {
		return nil, err
	}

	poster := &models.Poster{
		Title:   title,
		Content: content,
		Status:  status,
		UserID:  user.ID,
	}
	if err := storage.CreatePoster(s.db, poster); err != nil {
		logger.Error().Err(err).Msg("Failed to create poster")
		return nil, errs.Internal("failed to create poster")
	}

	return poster.View(), nil
}

func (s *Service) Get(id uint) (*models.PosterDetailView, error) {
	poster, err := storage.GetPosterByID(s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("poster not found")
		}
		logger.Error().Err(err).Msg("Database error during poster lookup")
		return nil, errs.Internal("query failed, please retry")
	}
	return poster.DetailView(), nil
}

// Update rewrites a poster. Only the owner may update.
func (s *Service) Update(userID uint64, id uint, title, content string, status int) (*models.PosterView, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if title == "" || content == "" {
		return nil, errs.Validation("title and content must not be empty")
	}
	if !models.ValidPosterStatuses.Contains(status) {
		return nil, errs.Validation("invalid status")
	}

	user, err := s.owner(userID)
	if err != nil {
		return nil, err
	}

	poster, err := storage.GetPosterByID(s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("poster not found")
		}
		logger.Error().Err(err).Msg("Database error during poster lookup")
		return nil, errs.Internal("update failed, please retry")
	}

	if poster.UserID != user.ID {
		return nil, errs.Forbidden("not the poster owner")
	}

	poster.Title = title
	poster.Content = content
	poster.Status = status
	if err := storage.UpdatePoster(s.db, poster); err != nil {
		logger.Error().Err(err).Msg("Failed to update poster")
		return nil, errs.Internal("update failed, please retry")
	}

	return poster.View(), nil
}

// Delete removes a poster. Only the owner may delete.
func (s *Service) Delete(userID uint64, id uint) error {
	user, err := s.owner(userID)
	if err != nil {
		return err
	}

	poster, err := storage.GetPosterByID(s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("poster not found")
		}
		logger.Error().Err(err).Msg("Database error during poster lookup")
		return errs.Internal("delete failed, please retry")
	}

	if poster.UserID != user.ID {
		return errs.Forbidden("not the poster owner")
	}

	if err := storage.DeletePoster(s.db, poster); err != nil {
		logger.Error().Err(err).Msg("Failed to delete poster")
		return errs.Internal("delete failed, please retry")
	}
	return nil
}

// List returns a page of posters, newest first. status < 0 means all.
func (s *Service) List(page, pageSize, status int) (*Page, error) {
	if status >= 0 && !models.ValidPosterStatuses.Contains(status) {
		return nil, errs.Validation("invalid status")
	}

	page, pageSize = clampPage(page, pageSize)
	result, err := storage.SearchPosters(s.db, page, pageSize, status)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to search posters")
		return nil, errs.Internal("query failed, please retry")
	}
	return toPage(result), nil
}

// Messages is the public board: published posters only.
func (s *Service) Messages(page, pageSize int) (*Page, error) {
	page, pageSize = clampPage(page, pageSize)
	result, err := storage.ListMessages(s.db, page, pageSize)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list messages")
		return nil, errs.Internal("query failed, please retry")
	}
	return toPage(result), nil
}

func toPage(p *storage.PosterPage) *Page {
	views := make([]*models.PosterView, 0, len(p.Items))
	for i := range p.Items {
		views = append(views, p.Items[i].View())
	}
	return &Page{
		List:     views,
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    p.Total,
	}
}
