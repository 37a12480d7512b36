// Package params binds path and query parameters shared by the list and
// item endpoints.
package params

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/quorum/pkg/quorum/apierror"
	"github.com/mikepea/quorum/pkg/quorum/repository"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// PageQuery is the offset/limit pair accepted by list endpoints.
type PageQuery struct {
	Offset int  `form:"offset" binding:"min=0"`
	Limit  *int `form:"limit" binding:"omitempty,min=1"`
}

// Page converts the query to a repository page. A missing limit becomes
// DefaultLimit and larger values are capped at MaxLimit.
func (q PageQuery) Page() repository.Page {
	limit := DefaultLimit
	if q.Limit != nil {
		limit = min(*q.Limit, MaxLimit)
	}
	return repository.Page{Offset: q.Offset, Limit: limit}
}

// BindQuery binds the query string into obj and reports failures as 422.
func BindQuery(c *gin.Context, obj any) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		return apierror.FromBinding(err)
	}
	return nil
}

// ID parses a numeric path parameter.
func ID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, apierror.Validation(name + ": must be a positive integer")
	}
	return uint(id), nil
}
