package tags

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/quorum/pkg/quorum/apierror"
	"github.com/mikepea/quorum/pkg/quorum/models"
	"github.com/mikepea/quorum/pkg/quorum/repository"
)

// Handler handles tag-related requests
type Handler struct {
	store *repository.Store
}

// NewHandler creates a new tags handler
func NewHandler(store *repository.Store) *Handler {
	return &Handler{store: store}
}

// TagResponse represents a tag in API responses
type TagResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	QuestionCount *int   `json:"question_count,omitempty"`
}

// NewTagResponses converts tags attached to a question.
func NewTagResponses(tags []models.Tag) []TagResponse {
	out := make([]TagResponse, len(tags))
	for i, t := range tags {
		out[i] = TagResponse{ID: t.ID, Name: t.Name}
	}
	return out
}

// List returns every tag with the number of questions using it
// @Summary List tags
// @Description All tags, most used first
// @Tags tags
// @Produce json
// @Success 200 {array} TagResponse
// @Router /tags [get]
func (h *Handler) List(c *gin.Context) {
	results, err := h.store.ListTags(c.Request.Context())
	if err != nil {
		apierror.Abort(c, err)
		return
	}

	tags := make([]TagResponse, len(results))
	for i, r := range results {
		count := r.QuestionCount
		tags[i] = TagResponse{
			ID:            r.ID,
			Name:          r.Name,
			QuestionCount: &count,
		}
	}

	c.JSON(http.StatusOK, tags)
}

// RegisterRoutes registers tag routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tags", h.List)
}
