package questions

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/quorum/pkg/quorum/apierror"
	"github.com/mikepea/quorum/pkg/quorum/auth"
	"github.com/mikepea/quorum/pkg/quorum/models"
	"github.com/mikepea/quorum/pkg/quorum/params"
	"github.com/mikepea/quorum/pkg/quorum/patch"
	"github.com/mikepea/quorum/pkg/quorum/policy"
	"github.com/mikepea/quorum/pkg/quorum/repository"
	"github.com/mikepea/quorum/pkg/quorum/tags"
	"github.com/mikepea/quorum/pkg/quorum/users"
)

const (
	minTagLength = 2
	maxTagLength = 255
)

// Handler handles question requests
type Handler struct {
	store *repository.Store
	now   func() time.Time
}

// NewHandler creates a new questions handler
func NewHandler(store *repository.Store) *Handler {
	return &Handler{store: store, now: time.Now}
}

// ListQuery holds the list filters
type ListQuery struct {
	params.PageQuery
	Search string `form:"q"`
	Tag    string `form:"tag"`
}

// CreateRequest represents the request to create a question
type CreateRequest struct {
	Title   string              `json:"title" binding:"required,min=5,max=255"`
	Content patch.Field[string] `json:"content" swaggertype:"string"`
	Tags    []string            `json:"tags" binding:"required,min=1,dive,required"`
}

// UpdateRequest carries the question fields to change. Null content or
// tags clears them; title may not be null.
type UpdateRequest struct {
	Title   patch.Field[string]   `json:"title" swaggertype:"string"`
	Content patch.Field[string]   `json:"content" swaggertype:"string"`
	Tags    patch.Field[[]string] `json:"tags" swaggertype:"array,string"`
}

func (r UpdateRequest) empty() bool {
	return !r.Title.Present && !r.Content.Present && !r.Tags.Present
}

func (r UpdateRequest) validate() error {
	if err := patch.Check("title", r.Title, false, "min=5,max=255"); err != nil {
		return err
	}
	if err := patch.Check("content", r.Content, true, "min=10"); err != nil {
		return err
	}
	return patch.Check("tags", r.Tags, true, "min=1,dive,required")
}

// QuestionResponse represents a question in API responses
type QuestionResponse struct {
	ID        uint               `json:"id"`
	Title     string             `json:"title"`
	Content   *string            `json:"content"`
	Published time.Time          `json:"published"`
	Updated   *time.Time         `json:"updated"`
	User      users.UserResponse `json:"user"`
	Tags      []tags.TagResponse `json:"tags"`
}

func newQuestionResponse(q *models.Question) QuestionResponse {
	return QuestionResponse{
		ID:        q.ID,
		Title:     q.Title,
		Content:   q.Content,
		Published: q.Published,
		Updated:   q.Updated,
		User:      users.NewUserResponse(&q.User),
		Tags:      tags.NewTagResponses(q.Tags),
	}
}

func notFound(id uint) error {
	return apierror.NotFound(fmt.Sprintf("Question with id %d was not found", id))
}

// resolveTags normalizes names and checks the resulting lengths before
// any tag row is written.
func resolveTags(c *gin.Context, tx *repository.Store, names []string) ([]models.Tag, error) {
	for _, raw := range names {
		n := utf8.RuneCountInString(repository.NormalizeTag(raw))
		if n < minTagLength || n > maxTagLength {
			return nil, apierror.Validation(fmt.Sprintf("tags: %q must be %d to %d characters", raw, minTagLength, maxTagLength))
		}
	}
	return tx.ResolveTags(c.Request.Context(), names)
}

// load fetches the question named by the :id path parameter.
func (h *Handler) load(c *gin.Context, tx *repository.Store) (*models.Question, error) {
	id, err := params.ID(c, "id")
	if err != nil {
		return nil, err
	}
	q, err := tx.GetQuestion(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, notFound(id)
	}
	return q, nil
}

// loadOwned is load plus the ownership check for mutations.
func (h *Handler) loadOwned(c *gin.Context, tx *repository.Store) (*models.Question, error) {
	q, err := h.load(c, tx)
	if err != nil {
		return nil, err
	}
	user, _ := auth.CurrentUser(c)
	if err := policy.RequireOwner(q, user); err != nil {
		return nil, apierror.Forbidden("Not enough permissions")
	}
	return q, nil
}

// List returns questions in id order
// @Summary List questions
// @Description Paginated questions, optionally filtered by title substring and tag
// @Tags questions
// @Produce json
// @Param offset query int false "Items to skip" minimum(0)
// @Param limit query int false "Maximum items (default 50, capped at 100)" minimum(1)
// @Param q query string false "Substring of the title"
// @Param tag query string false "Tag name"
// @Success 200 {array} QuestionResponse
// @Failure 422 {object} apierror.Response "Validation error"
// @Router /questions [get]
func (h *Handler) List(c *gin.Context) {
	var query ListQuery
	if err := params.BindQuery(c, &query); err != nil {
		apierror.Abort(c, err)
		return
	}

	results, err := h.store.ListQuestions(c.Request.Context(), repository.QuestionFilter{
		Page:   query.Page(),
		Search: query.Search,
		Tag:    query.Tag,
	})
	if err != nil {
		apierror.Abort(c, err)
		return
	}

	out := make([]QuestionResponse, len(results))
	for i := range results {
		out[i] = newQuestionResponse(&results[i])
	}
	c.JSON(http.StatusOK, out)
}

// Create posts a new question
// @Summary Ask a question
// @Tags questions
// @Accept json
// @Produce json
// @Param request body CreateRequest true "Question details"
// @Success 201 {object} QuestionResponse
// @Failure 401 {object} apierror.Response "Not authenticated"
// @Failure 422 {object} apierror.Response "Validation error"
// @Security BearerAuth
// @Router /questions [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Abort(c, apierror.FromBinding(err))
		return
	}
	if err := patch.Check("content", req.Content, true, "min=10"); err != nil {
		apierror.Abort(c, err)
		return
	}
	var content *string
	if req.Content.HasValue() {
		content = req.Content.Ptr()
	}
	user, _ := auth.CurrentUser(c)

	ctx := c.Request.Context()
	var created *models.Question
	err := h.store.Transaction(ctx, func(tx *repository.Store) error {
		resolved, err := resolveTags(c, tx, req.Tags)
		if err != nil {
			return err
		}
		q := &models.Question{
			Title:     req.Title,
			Content:   content,
			Published: h.now().UTC(),
			UserID:    user.ID,
			Tags:      resolved,
		}
		if err := tx.CreateQuestion(ctx, q); err != nil {
			return err
		}
		created, err = tx.GetQuestion(ctx, q.ID)
		return err
	})
	if err != nil {
		apierror.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, newQuestionResponse(created))
}

// Get returns one question with its owner and tags
// @Summary Get a question
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} QuestionResponse
// @Failure 404 {object} apierror.Response "Question not found"
// @Router /questions/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	q, err := h.load(c, h.store)
	if err != nil {
		apierror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, newQuestionResponse(q))
}

// Update changes a question's title, content or tags
// @Summary Update a question
// @Description Partial update by the owner. Null content or tags clears them.
// @Tags questions
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param request body UpdateRequest true "Fields to change"
// @Success 200 {object} QuestionResponse
// @Failure 400 {object} apierror.Response "No data provided"
// @Failure 401 {object} apierror.Response "Not authenticated"
// @Failure 403 {object} apierror.Response "Not the owner"
// @Failure 404 {object} apierror.Response "Question not found"
// @Failure 422 {object} apierror.Response "Validation error"
// @Security BearerAuth
// @Router /questions/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apierror.Abort(c, apierror.FromBinding(err))
		return
	}

	ctx := c.Request.Context()
	var updated *models.Question
	err := h.store.Transaction(ctx, func(tx *repository.Store) error {
		q, err := h.loadOwned(c, tx)
		if err != nil {
			return err
		}
		if req.empty() {
			return apierror.BadRequest("No data provided")
		}
		if err := req.validate(); err != nil {
			return err
		}

		if req.Title.Present {
			q.Title = req.Title.Value
		}
		if req.Content.Present {
			q.Content = req.Content.Ptr()
		}
		now := h.now().UTC()
		q.Updated = &now
		if err := tx.SaveQuestion(ctx, q); err != nil {
			return err
		}

		if req.Tags.Present {
			resolved := []models.Tag{}
			if req.Tags.HasValue() {
				if resolved, err = resolveTags(c, tx, req.Tags.Value); err != nil {
					return err
				}
			}
			if err := tx.ReplaceTags(ctx, q, resolved); err != nil {
				return err
			}
		}

		updated, err = tx.GetQuestion(ctx, q.ID)
		return err
	})
	if err != nil {
		apierror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, newQuestionResponse(updated))
}

// Delete removes a question with its answers
// @Summary Delete a question
// @Tags questions
// @Param id path int true "Question ID"
// @Success 204
// @Failure 401 {object} apierror.Response "Not authenticated"
// @Failure 403 {object} apierror.Response "Not the owner"
// @Failure 404 {object} apierror.Response "Question not found"
// @Security BearerAuth
// @Router /questions/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	err := h.store.Transaction(ctx, func(tx *repository.Store) error {
		q, err := h.loadOwned(c, tx)
		if err != nil {
			return err
		}
		return tx.DeleteQuestion(ctx, q.ID)
	})
	if err != nil {
		apierror.Abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers question routes. Reads are public; requireUser
// guards the mutations.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireUser gin.HandlerFunc) {
	rg.GET("/questions", h.List)
	rg.POST("/questions", requireUser, h.Create)
	rg.GET("/questions/:id", h.Get)
	rg.PATCH("/questions/:id", requireUser, h.Update)
	rg.DELETE("/questions/:id", requireUser, h.Delete)
}
