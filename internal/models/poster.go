package models

import (
	"time"

	"github.com/hashicorp/go-set/v3"
	"gorm.io/gorm"
)

// Poster statuses. The numeric values predate this service and are kept for
// compatibility with existing clients.
const (
	PosterStatusDraft     = 4
	PosterStatusPublished = 256
)

var ValidPosterStatuses = set.From([]int{PosterStatusDraft, PosterStatusPublished})

type Poster struct {
	gorm.Model
	Title   string `gorm:"size:200"`
	Content string `gorm:"type:text"`
	Status  int
	UserID  uint `gorm:"index"`
}

// PosterView is the list/detail representation returned to API callers.
type PosterView struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Status    int       `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// PosterDetailView additionally carries the content body.
type PosterDetailView struct {
	PosterView
	Content string `json:"content"`
}

func (p *Poster) View() *PosterView {
	return &PosterView{
		ID:        p.ID,
		Title:     p.Title,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
	}
}

func (p *Poster) DetailView() *PosterDetailView {
	return &PosterDetailView{
		PosterView: *p.View(),
		Content:    p.Content,
	}
}
