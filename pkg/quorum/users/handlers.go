package users

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/mikepea/quorum/pkg/quorum/apierror"
	"github.com/mikepea/quorum/pkg/quorum/auth"
	"github.com/mikepea/quorum/pkg/quorum/models"
	"github.com/mikepea/quorum/pkg/quorum/patch"
	"github.com/mikepea/quorum/pkg/quorum/repository"
)

// Handler handles account requests
type Handler struct {
	store      *repository.Store
	issuer     *auth.TokenIssuer
	bcryptCost int
}

// NewHandler creates a new users handler
func NewHandler(store *repository.Store, issuer *auth.TokenIssuer, bcryptCost int) *Handler {
	return &Handler{store: store, issuer: issuer, bcryptCost: bcryptCost}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=5,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the form-encoded login body
type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// UpdateRequest carries the account fields to change. Absent fields are
// left alone; none of them may be null.
type UpdateRequest struct {
	Username patch.Field[string] `json:"username" swaggertype:"string"`
	Email    patch.Field[string] `json:"email" swaggertype:"string"`
	Password patch.Field[string] `json:"password" swaggertype:"string"`
}

func (r UpdateRequest) empty() bool {
	return !r.Username.Present && !r.Email.Present && !r.Password.Present
}

func (r UpdateRequest) validate() error {
	if err := patch.Check("username", r.Username, false, "min=5,max=255"); err != nil {
		return err
	}
	if err := patch.Check("email", r.Email, false, "email,max=255"); err != nil {
		return err
	}
	return patch.Check("password", r.Password, false, "min=8")
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// NewUserResponse builds the public view of u.
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
}

// storeError maps repository errors to API errors.
func storeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		return apierror.Conflict("Duplicate username")
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apierror.Conflict("Duplicate email")
	case auth.IsPasswordTooLong(err):
		return apierror.Validation("password: must be at most 72 bytes")
	}
	return err
}

// Register creates a new account
// @Summary Register a user
// @Description Create an account. The password is stored as a bcrypt hash.
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account details"
// @Success 201 {object} UserResponse
// @Failure 409 {object} apierror.Response "Duplicate username or email"
// @Failure 422 {object} apierror.Response "Validation error"
// @Router /users [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Abort(c, apierror.FromBinding(err))
		return
	}

	hash, err := auth.HashPasswordWithCost(req.Password, h.bcryptCost)
	if err != nil {
		apierror.Abort(c, storeError(err))
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	ctx := c.Request.Context()
	err = h.store.Transaction(ctx, func(tx *repository.Store) error {
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		apierror.Abort(c, storeError(err))
		return
	}

	c.JSON(http.StatusCreated, NewUserResponse(user))
}

// Login exchanges a username and password for an access token
// @Summary Log in
// @Description Verify credentials and issue a bearer token
// @Tags users
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} apierror.Response "Incorrect username or password"
// @Failure 422 {object} apierror.Response "Validation error"
// @Router /users/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		apierror.Abort(c, apierror.FromBinding(err))
		return
	}

	user, err := h.store.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		apierror.Abort(c, err)
		return
	}
	if user == nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		apierror.Abort(c, apierror.Unauthenticated("Incorrect username or password"))
		return
	}

	token, err := h.issuer.Issue(user.Username)
	if err != nil {
		apierror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me returns the authenticated user
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} apierror.Response "Not authenticated"
// @Security BearerAuth
// @Router /users/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, _ := auth.CurrentUser(c)
	c.JSON(http.StatusOK, NewUserResponse(user))
}

// UpdateMe changes the authenticated user's username, email or password
// @Summary Update current user
// @Description Partial update; only fields present in the body change.
// @Tags users
// @Accept json
// @Produce json
// @Param request body UpdateRequest true "Fields to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} apierror.Response "No data provided"
// @Failure 401 {object} apierror.Response "Not authenticated"
// @Failure 409 {object} apierror.Response "Duplicate username or email"
// @Failure 422 {object} apierror.Response "Validation error"
// @Security BearerAuth
// @Router /users/me [patch]
func (h *Handler) UpdateMe(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apierror.Abort(c, apierror.FromBinding(err))
		return
	}
	if req.empty() {
		apierror.Abort(c, apierror.BadRequest("No data provided"))
		return
	}
	if err := req.validate(); err != nil {
		apierror.Abort(c, err)
		return
	}

	current, _ := auth.CurrentUser(c)
	user := *current
	if req.Username.HasValue() {
		user.Username = req.Username.Value
	}
	if req.Email.HasValue() {
		user.Email = req.Email.Value
	}
	if req.Password.HasValue() {
		hash, err := auth.HashPasswordWithCost(req.Password.Value, h.bcryptCost)
		if err != nil {
			apierror.Abort(c, storeError(err))
			return
		}
		user.PasswordHash = hash
	}

	ctx := c.Request.Context()
	err := h.store.Transaction(ctx, func(tx *repository.Store) error {
		return tx.UpdateUser(ctx, &user)
	})
	if err != nil {
		apierror.Abort(c, storeError(err))
		return
	}

	c.JSON(http.StatusOK, NewUserResponse(&user))
}

// DeleteMe removes the authenticated user with all their questions and
// answers
// @Summary Delete current user
// @Tags users
// @Success 204
// @Failure 401 {object} apierror.Response "Not authenticated"
// @Security BearerAuth
// @Router /users/me [delete]
func (h *Handler) DeleteMe(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	ctx := c.Request.Context()
	err := h.store.Transaction(ctx, func(tx *repository.Store) error {
		return tx.DeleteUser(ctx, user.ID)
	})
	if err != nil {
		apierror.Abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers account routes. requireUser guards the /me
// endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireUser gin.HandlerFunc) {
	rg.POST("/users", h.Register)
	rg.POST("/users/login", h.Login)

	me := rg.Group("/users/me", requireUser)
	me.GET("", h.Me)
	me.PATCH("", h.UpdateMe)
	me.DELETE("", h.DeleteMe)
}
