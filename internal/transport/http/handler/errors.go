package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/secure-login/internal/transport/http/response"
)

// MethodNotAllowed answers a known route hit with the wrong method.
func MethodNotAllowed(c *gin.Context) {
	response.Fail(c, http.StatusMethodNotAllowed, response.CodeMethodNotAllowed)
}

func NotFound(c *gin.Context) {
	response.Fail(c, http.StatusNotFound, response.CodeNotFound)
}

// Recovery turns a panic into a generic 500.
func Recovery(c *gin.Context, _ any) {
	response.Fail(c, http.StatusInternalServerError, response.CodeInternal)
}
