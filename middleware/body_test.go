package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodySizeLimiterStopsTheChain(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handlerRan := false

	r := gin.New()
	r.POST("/x", BodySizeLimiter(16), func(c *gin.Context) {
		handlerRan = true
		c.Status(http.StatusOK)
	})

	// Declared length over the limit, actual body small
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("{}"))
	req.ContentLength = 1 << 20

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, handlerRan, "guarded handler must not run after the reject")
}

func TestBodySizeLimiterPassesSmallBodies(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/x", BodySizeLimiter(64), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("{}"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
