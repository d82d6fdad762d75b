// Package render writes the API response envelope shared by all handlers:
// {"code": ..., "message": ..., "data": ...}. Success always carries code
// 200; failures carry the business code from errs.
package render

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charleshuang3/posterboard/internal/errs"
)

type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

// Error writes err's envelope and aborts the handler chain.
func Error(c *gin.Context, err error) {
	e := errs.From(err)
	c.AbortWithStatusJSON(e.HTTPCode, Response{
		Code:    e.Code,
		Message: e.Message,
		Data:    nil,
	})
}
