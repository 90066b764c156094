package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"storeit/backend/internal/filetype"
	"storeit/backend/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Column whitelist for the sort specifier. The $-prefixed spellings are
// what the web client has always sent
var sortFields = map[string]string{
	"$createdAt": "created_at",
	"createdAt":  "created_at",
	"$updatedAt": "updated_at",
	"updatedAt":  "updated_at",
	"name":       "name",
	"size":       "size",
}

const maxFetchLimit = 100

// FileFetch lists files the caller owns or has been shared. Optional
// narrowing by category set and name substring, optional limit, ordered
// by a field-direction specifier where anything but asc means desc
func (a *API) FileFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	user, ok := a.currentUser(c)
	if !ok {
		return
	}

	types := c.QueryArray("type")
	for _, t := range types {
		if _, err := filetype.Parse(t); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		var err error

		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > maxFetchLimit {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid limit provided",
				"requestID": requestID,
			})
			return
		}
	}

	order, err := parseSort(c.DefaultQuery("sort", "$createdAt-desc"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	// Owner match or caller's email inside the comma-joined share list.
	// The list is wrapped in commas on both sides and the address has
	// its LIKE wildcards escaped, so only an exact entry matches
	q := a.DB.
		Where(`owner_id = ? OR (',' || users || ',') LIKE ? ESCAPE '\'`, user.ID, "%,"+escapeLike(user.Email)+",%")

	if len(types) > 0 {
		q = q.Where("type IN ?", types)
	}

	if search := strings.ToLower(c.Query("search")); search != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(search)+"%")
	}

	if limit > 0 {
		q = q.Limit(limit)
	}

	var entries []model.File

	err = q.
		Order(order).
		Find(&entries).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to lookup user files", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": len(entries),
		"files": entries,
	})
}

// escapeLike neutralizes LIKE wildcards in a literal before it's
// embedded in a pattern. % and _ are valid email characters
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// parseSort turns a field-direction specifier like name-asc or
// $createdAt-desc into an ORDER BY clause. Any direction other than asc
// sorts descending
func parseSort(s string) (string, error) {
	field, dir, _ := strings.Cut(s, "-")

	col, ok := sortFields[field]
	if !ok {
		return "", fmt.Errorf("invalid sort field %q", field)
	}

	if dir == "asc" {
		return col + " asc", nil
	}

	return col + " desc", nil
}
