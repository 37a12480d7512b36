package tags

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/quorum/pkg/quorum/database"
	"github.com/mikepea/quorum/pkg/quorum/models"
	"github.com/mikepea/quorum/pkg/quorum/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := database.Open(":memory:", nil)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(func() { database.Close(db) })
	require.NoError(t, models.AutoMigrate(db))
	return repository.New(db)
}

func setupTestRouter(store *repository.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(store).RegisterRoutes(r.Group(""))
	return r
}

func TestList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := &models.User{Username: "test_user", Email: "test@example.com", PasswordHash: "hash"}
	require.NoError(t, store.CreateUser(ctx, user))
	tags, err := store.ResolveTags(ctx, []string{"Go", "SQL"})
	require.NoError(t, err)
	require.NoError(t, store.CreateQuestion(ctx, &models.Question{Title: "First question", UserID: user.ID, Tags: tags}))
	require.NoError(t, store.CreateQuestion(ctx, &models.Question{Title: "Second question", UserID: user.ID, Tags: tags[:1]}))

	req, _ := http.NewRequest("GET", "/tags", nil)
	resp := httptest.NewRecorder()
	setupTestRouter(store).ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var got []TagResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "go", got[0].Name)
	require.NotNil(t, got[0].QuestionCount)
	assert.Equal(t, 2, *got[0].QuestionCount)
	assert.Equal(t, "sql", got[1].Name)
	assert.Equal(t, 1, *got[1].QuestionCount)
}

func TestListEmpty(t *testing.T) {
	store := setupTestStore(t)

	req, _ := http.NewRequest("GET", "/tags", nil)
	resp := httptest.NewRecorder()
	setupTestRouter(store).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, "[]", resp.Body.String())
}
