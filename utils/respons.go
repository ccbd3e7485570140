package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error  ErrorKind `json:"error"`
	Detail string    `json:"detail"`
}

func RespondJSON(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

// RespondError writes err in the {error, detail} shape. Internal errors are
// logged and their detail is hidden from the client.
func RespondError(c *gin.Context, err error) {
	code := StatusCode(err)

	var appErr *AppError
	if !errors.As(err, &appErr) {
		ErrorLogger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Errorf("internal error: %v", err)
		c.AbortWithStatusJSON(code, ErrorResponse{Error: KindInternal, Detail: http.StatusText(code)})
		return
	}

	c.AbortWithStatusJSON(code, ErrorResponse{Error: appErr.Kind, Detail: appErr.Message})
}

// BindJSON decodes the request body into dst, reporting failures as Unprocessable.
func BindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, Unprocessable("invalid request body: %v", err))
		return false
	}
	return true
}
