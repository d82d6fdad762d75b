package authapi

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/charleshuang3/posterboard/internal/errs"
	"github.com/charleshuang3/posterboard/internal/handlers/render"
)

type handleRegisterParams struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handlers) handleRegister(c *gin.Context) {
	params := &handleRegisterParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		render.Error(c, errs.Validation("username, email and password are required"))
		return
	}

	view, err := h.service.Register(params.Username, params.Email, params.Password)
	if err != nil {
		render.Error(c, err)
		return
	}

	render.Success(c, view)
}

type handleLoginParams struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
	Device   string `json:"device"`
}

type handleLoginResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh"`
}

func (h *Handlers) handleLogin(c *gin.Context) {
	params := &handleLoginParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		render.Error(c, errs.Validation("password is required"))
		return
	}

	result, err := h.service.Login(params.Email, params.Username, params.Password, params.Device)
	if err != nil {
		logger.Info().
			Str("username", params.Username).
			Str("client_ip", c.ClientIP()).
			Msg("login failed")
		render.Error(c, err)
		return
	}

	render.Success(c, &handleLoginResponse{
		ID:           result.User.UserID,
		Username:     result.User.Username,
		Email:        result.User.Email,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

type handleRefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func (h *Handlers) handleRefresh(c *gin.Context) {
	rawToken, ok := bearerToken(c)
	if !ok {
		render.Error(c, errs.InvalidRefreshToken())
		return
	}

	pair, err := h.service.Rotate(rawToken)
	if err != nil {
		render.Error(c, err)
		return
	}

	render.Success(c, &handleRefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	})
}

func (h *Handlers) handleLogout(c *gin.Context) {
	rawToken, ok := bearerToken(c)
	if !ok {
		render.Error(c, errs.InvalidRefreshToken())
		return
	}

	if err := h.service.Revoke(rawToken); err != nil {
		render.Error(c, err)
		return
	}

	render.Success(c, gin.H{"revoked": true})
}

func (h *Handlers) handleProfile(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		render.Error(c, errs.Validation("invalid user id"))
		return
	}

	view, err := h.service.Profile(userID)
	if err != nil {
		render.Error(c, err)
		return
	}

	render.Success(c, view)
}
