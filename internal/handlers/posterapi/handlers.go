// Package posterapi exposes poster CRUD (authenticated) and the public
// message listing over HTTP.
package posterapi

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/charleshuang3/posterboard/internal/errs"
	"github.com/charleshuang3/posterboard/internal/handlers/authapi"
	"github.com/charleshuang3/posterboard/internal/handlers/render"
	"github.com/charleshuang3/posterboard/internal/poster"
)

type Handlers struct {
	service *poster.Service
}

func NewHandlers(service *poster.Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterHandlers mounts the poster routes. requireAuth guards everything
// except the public message listing.
func (h *Handlers) RegisterHandlers(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.GET("/message", h.handleMessages)

	posterRoutes := rg.Group("/poster")
	posterRoutes.Use(requireAuth)
	{
		posterRoutes.POST("/add", h.handleAdd)
		posterRoutes.GET("/list", h.handleList)
		posterRoutes.GET("/:id", h.handleDetail)
		posterRoutes.PUT("/:id", h.handleUpdate)
		posterRoutes.DELETE("/:id", h.handleDelete)
	}
}

func identity(c *gin.Context) (uint64, bool) {
	userID, ok := authapi.UserIDFromContext(c)
	if !ok {
		// RequireAccessToken did not run; treat as unauthenticated.
		render.Error(c, errs.InvalidAccessToken())
		return 0, false
	}
	return userID, true
}

func posterID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		render.Error(c, errs.Validation("invalid poster id"))
		return 0, false
	}
	return uint(id), true
}

type posterParams struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	Status  int    `json:"status" binding:"required"`
}

type listQuery struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=10"`
	Status   int `form:"status,default=-1"`
}

func (h *Handlers) handleAdd(c *gin.Context) {
	userID, ok := identity(c)
	if !ok {
		return
	}

	params := &posterParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		render.Error(c, errs.Validation("title, content and status are required"))
		return
	}

	view, err := h.service.Create(userID, params.Title, params.Content, params.Status)
	if err != nil {
		render.Error(c, err)
		return
	}

	render.Success(c, gin.H{"id": view.ID})
}

func (h *Handlers) handleList(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}

	query := &listQuery{}
	if err := c.ShouldBindQuery(query); err != nil {
		render.Error(c, errs.Validation("invalid query parameters"))
		return
	}

	page, err := h.service.List(query.Page, query.PageSize, query.Status)
	if err != nil {
		render.Error(c, err)
		return
	}

	render.Success(c, page)
}

func (h *Handlers) handleDetail(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}

	id, ok := posterID(c)
	if !ok {
		return
	}

	view, err := h.service.Get(id)
	if err != nil {
		render.Error(c, err)
		return
	}

	render.Success(c, view)
}

func (h *Handlers) handleUpdate(c *gin.Context) {
	userID, ok := identity(c)
	if !ok {
		return
	}

	id, ok := posterID(c)
	if !ok {
		return
	}

	params := &posterParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		render.Error(c, errs.Validation("title, content and status are required"))
		return
	}

	view, err := h.service.Update(userID, id, params.Title, params.Content, params.Status)
	if err != nil {
		render.Error(c, err)
		return
	}

	render.Success(c, view)
}

func (h *Handlers) handleDelete(c *gin.Context) {
	userID, ok := identity(c)
	if !ok {
		return
	}

	id, ok := posterID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(userID, id); err != nil {
		render.Error(c, err)
		return
	}

	render.Success(c, gin.H{"deleted": true})
}

func (h *Handlers) handleMessages(c *gin.Context) {
	query := &listQuery{}
	if err := c.ShouldBindQuery(query); err != nil {
		render.Error(c, errs.Validation("invalid query parameters"))
		return
	}

	page, err := h.service.Messages(query.Page, query.PageSize)
	if err != nil {
		render.Error(c, err)
		return
	}

	render.Success(c, page)
}
