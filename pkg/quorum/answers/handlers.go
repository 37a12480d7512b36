package answers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/quorum/pkg/quorum/apierror"
	"github.com/mikepea/quorum/pkg/quorum/auth"
	"github.com/mikepea/quorum/pkg/quorum/models"
	"github.com/mikepea/quorum/pkg/quorum/params"
	"github.com/mikepea/quorum/pkg/quorum/patch"
	"github.com/mikepea/quorum/pkg/quorum/policy"
	"github.com/mikepea/quorum/pkg/quorum/repository"
	"github.com/mikepea/quorum/pkg/quorum/users"
)

// Handler handles answer requests
type Handler struct {
	store *repository.Store
	now   func() time.Time
}

// NewHandler creates a new answers handler
func NewHandler(store *repository.Store) *Handler {
	return &Handler{store: store, now: time.Now}
}

// ListQuery holds pagination and ordering for the answer list
type ListQuery struct {
	params.PageQuery
	OrderBy string `form:"order_by" binding:"omitempty,oneof=id published -published"`
}

// CreateRequest represents the request to answer a question
type CreateRequest struct {
	Content string `json:"content" binding:"required,min=10"`
}

// UpdateRequest carries the new content. Content may not be null.
type UpdateRequest struct {
	Content patch.Field[string] `json:"content" swaggertype:"string"`
}

// AnswerResponse represents an answer in API responses
type AnswerResponse struct {
	ID         uint               `json:"id"`
	Content    string             `json:"content"`
	Published  time.Time          `json:"published"`
	Updated    *time.Time         `json:"updated"`
	QuestionID uint               `json:"question_id"`
	User       users.UserResponse `json:"user"`
}

func newAnswerResponse(a *models.Answer) AnswerResponse {
	return AnswerResponse{
		ID:         a.ID,
		Content:    a.Content,
		Published:  a.Published,
		Updated:    a.Updated,
		QuestionID: a.QuestionID,
		User:       users.NewUserResponse(&a.User),
	}
}

// question parses :id and checks that the question exists.
func question(c *gin.Context, tx *repository.Store) (uint, error) {
	id, err := params.ID(c, "id")
	if err != nil {
		return 0, err
	}
	ok, err := tx.QuestionExists(c.Request.Context(), id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, apierror.NotFound(fmt.Sprintf("Question with id %d was not found", id))
	}
	return id, nil
}

func (h *Handler) load(c *gin.Context, tx *repository.Store) (*models.Answer, error) {
	questionID, err := question(c, tx)
	if err != nil {
		return nil, err
	}
	answerID, err := params.ID(c, "answer_id")
	if err != nil {
		return nil, err
	}
	a, err := tx.GetAnswer(c.Request.Context(), questionID, answerID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apierror.NotFound(fmt.Sprintf("Answer with id %d was not found", answerID))
	}
	return a, nil
}

func (h *Handler) loadOwned(c *gin.Context, tx *repository.Store) (*models.Answer, error) {
	a, err := h.load(c, tx)
	if err != nil {
		return nil, err
	}
	user, _ := auth.CurrentUser(c)
	if err := policy.RequireOwner(a, user); err != nil {
		return nil, apierror.Forbidden("Not enough permissions")
	}
	return a, nil
}

// Create answers a question
// @Summary Answer a question
// @Tags answers
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param request body CreateRequest true "Answer"
// @Success 201 {object} AnswerResponse
// @Failure 401 {object} apierror.Response "Not authenticated"
// @Failure 404 {object} apierror.Response "Question not found"
// @Failure 422 {object} apierror.Response "Validation error"
// @Security BearerAuth
// @Router /questions/{id}/answers [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Abort(c, apierror.FromBinding(err))
		return
	}
	user, _ := auth.CurrentUser(c)

	ctx := c.Request.Context()
	var created *models.Answer
	err := h.store.Transaction(ctx, func(tx *repository.Store) error {
		questionID, err := question(c, tx)
		if err != nil {
			return err
		}
		a := &models.Answer{
			Content:    req.Content,
			Published:  h.now().UTC(),
			UserID:     user.ID,
			QuestionID: questionID,
		}
		if err := tx.CreateAnswer(ctx, a); err != nil {
			return err
		}
		created, err = tx.GetAnswer(ctx, questionID, a.ID)
		return err
	})
	if err != nil {
		apierror.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, newAnswerResponse(created))
}

// List returns the answers to a question
// @Summary List answers
// @Tags answers
// @Produce json
// @Param id path int true "Question ID"
// @Param offset query int false "Items to skip" minimum(0)
// @Param limit query int false "Maximum items (default 50, capped at 100)" minimum(1)
// @Param order_by query string false "Sort order" Enums(id, published, -published)
// @Success 200 {array} AnswerResponse
// @Failure 404 {object} apierror.Response "Question not found"
// @Failure 422 {object} apierror.Response "Validation error"
// @Router /questions/{id}/answers [get]
func (h *Handler) List(c *gin.Context) {
	var query ListQuery
	if err := params.BindQuery(c, &query); err != nil {
		apierror.Abort(c, err)
		return
	}
	questionID, err := question(c, h.store)
	if err != nil {
		apierror.Abort(c, err)
		return
	}

	results, err := h.store.ListAnswers(c.Request.Context(), questionID, repository.AnswerFilter{
		Page:  query.Page(),
		Order: repository.AnswerOrder(query.OrderBy),
	})
	if err != nil {
		apierror.Abort(c, err)
		return
	}

	out := make([]AnswerResponse, len(results))
	for i := range results {
		out[i] = newAnswerResponse(&results[i])
	}
	c.JSON(http.StatusOK, out)
}

// Get returns one answer
// @Summary Get an answer
// @Tags answers
// @Produce json
// @Param id path int true "Question ID"
// @Param answer_id path int true "Answer ID"
// @Success 200 {object} AnswerResponse
// @Failure 404 {object} apierror.Response "Question or answer not found"
// @Router /questions/{id}/answers/{answer_id} [get]
func (h *Handler) Get(c *gin.Context) {
	a, err := h.load(c, h.store)
	if err != nil {
		apierror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, newAnswerResponse(a))
}

// Update replaces an answer's content
// @Summary Update an answer
// @Description Owner only. Fields absent from the body are left unchanged.
// @Tags answers
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param answer_id path int true "Answer ID"
// @Param request body UpdateRequest true "New content"
// @Success 200 {object} AnswerResponse
// @Failure 400 {object} apierror.Response "No data provided"
// @Failure 401 {object} apierror.Response "Not authenticated"
// @Failure 403 {object} apierror.Response "Not the owner"
// @Failure 404 {object} apierror.Response "Question or answer not found"
// @Failure 422 {object} apierror.Response "Validation error"
// @Security BearerAuth
// @Router /questions/{id}/answers/{answer_id} [put]
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apierror.Abort(c, apierror.FromBinding(err))
		return
	}

	ctx := c.Request.Context()
	var updated *models.Answer
	err := h.store.Transaction(ctx, func(tx *repository.Store) error {
		a, err := h.loadOwned(c, tx)
		if err != nil {
			return err
		}
		if !req.Content.Present {
			return apierror.BadRequest("No data provided")
		}
		if err := patch.Check("content", req.Content, false, "min=10"); err != nil {
			return err
		}

		a.Content = req.Content.Value
		now := h.now().UTC()
		a.Updated = &now
		if err := tx.SaveAnswer(ctx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		apierror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, newAnswerResponse(updated))
}

// Delete removes an answer
// @Summary Delete an answer
// @Tags answers
// @Param id path int true "Question ID"
// @Param answer_id path int true "Answer ID"
// @Success 204
// @Failure 401 {object} apierror.Response "Not authenticated"
// @Failure 403 {object} apierror.Response "Not the owner"
// @Failure 404 {object} apierror.Response "Question or answer not found"
// @Security BearerAuth
// @Router /questions/{id}/answers/{answer_id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	err := h.store.Transaction(ctx, func(tx *repository.Store) error {
		a, err := h.loadOwned(c, tx)
		if err != nil {
			return err
		}
		return tx.DeleteAnswer(ctx, a.ID)
	})
	if err != nil {
		apierror.Abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers answer routes under /questions/:id/answers
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireUser gin.HandlerFunc) {
	answers := rg.Group("/questions/:id/answers")
	answers.GET("", h.List)
	answers.POST("", requireUser, h.Create)
	answers.GET("/:answer_id", h.Get)
	answers.PUT("/:answer_id", requireUser, h.Update)
	answers.DELETE("/:answer_id", requireUser, h.Delete)
}
