package storage

import (
	"github.com/charleshuang3/posterboard/internal/gormw"
	"github.com/charleshuang3/posterboard/internal/models"
)

// PosterPage is one page of a poster listing plus the total row count.
type PosterPage struct {
	Items    []models.Poster
	Page     int
	PageSize int
	Total    int64
}

func CreatePoster(db *gormw.DB, poster *models.Poster) error {
	return db.Create(poster).Error
}

func GetPosterByID(db *gormw.DB, id uint) (*models.Poster, error) {
	poster := &models.Poster{}
	if err := db.Where("id = ?", id).First(poster).Error; err != nil {
		return nil, err
	}
	return poster, nil
}

func UpdatePoster(db *gormw.DB, poster *models.Poster) error {
	return db.Save(poster).Error
}

func DeletePoster(db *gormw.DB, poster *models.Poster) error {
	return db.Delete(poster).Error
}

// SearchPosters returns a page of posters, newest first. status < 0 means no
// status filter. Page params are clamped by the caller.
func SearchPosters(db *gormw.DB, page, pageSize, status int) (*PosterPage, error) {
	q := db.Model(&models.Poster{})
	if status >= 0 {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Poster
	err := q.Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &PosterPage{Items: items, Page: page, PageSize: pageSize, Total: total}, nil
}

// ListMessages is the public message board view: published posters only.
func ListMessages(db *gormw.DB, page, pageSize int) (*PosterPage, error) {
	return SearchPosters(db, page, pageSize, models.PosterStatusPublished)
}
