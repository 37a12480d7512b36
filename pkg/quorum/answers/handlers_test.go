package answers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/quorum/pkg/quorum/apierror"
	"github.com/mikepea/quorum/pkg/quorum/auth"
	"github.com/mikepea/quorum/pkg/quorum/database"
	"github.com/mikepea/quorum/pkg/quorum/models"
	"github.com/mikepea/quorum/pkg/quorum/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store   *repository.Store
	issuer  *auth.TokenIssuer
	handler *Handler
	router  *gin.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:", nil)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(func() { database.Close(db) })
	require.NoError(t, models.AutoMigrate(db))

	store := repository.New(db)
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	handler := NewHandler(store)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.RegisterRoutes(r.Group(""), auth.RequireUser(issuer, store))
	return &testEnv{store: store, issuer: issuer, handler: handler, router: r}
}

func (e *testEnv) createTestUser(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", PasswordHash: "hash"}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	token, err := e.issuer.Issue(username)
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) createTestQuestion(t *testing.T, owner *models.User) *models.Question {
	t.Helper()
	ctx := context.Background()
	tags, err := e.store.ResolveTags(ctx, []string{"go"})
	require.NoError(t, err)
	q := &models.Question{Title: "A question worth answering", UserID: owner.ID, Tags: tags}
	require.NoError(t, e.store.CreateQuestion(ctx, q))
	return q
}

func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func (e *testEnv) answer(t *testing.T, q *models.Question, token, content string) AnswerResponse {
	t.Helper()
	body, _ := json.Marshal(CreateRequest{Content: content})
	resp := e.do("POST", fmt.Sprintf("/questions/%d/answers", q.ID), string(body), token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[AnswerResponse](t, resp)
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), resp.Body.String())
	return v
}

func TestCreate(t *testing.T) {
	env := setupTestEnv(t)
	asker, _ := env.createTestUser(t, "asker")
	answerer, token := env.createTestUser(t, "answerer")
	q := env.createTestQuestion(t, asker)

	a := env.answer(t, q, token, "Use a buffered channel here")
	assert.NotZero(t, a.ID)
	assert.Equal(t, q.ID, a.QuestionID)
	assert.Equal(t, answerer.ID, a.User.ID)
	assert.Equal(t, "answerer", a.User.Username)
	assert.False(t, a.Published.IsZero())
	assert.Nil(t, a.Updated)
}

func TestCreateRejects(t *testing.T) {
	env := setupTestEnv(t)
	asker, token := env.createTestUser(t, "asker")
	q := env.createTestQuestion(t, asker)
	path := fmt.Sprintf("/questions/%d/answers", q.ID)

	resp := env.do("POST", path, `{"content": "too short"}`, token)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "content: must be at least 10 characters", decode[apierror.Response](t, resp).Detail)

	resp = env.do("POST", "/questions/999/answers", `{"content": "A perfectly fine answer"}`, token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Question with id 999 was not found", decode[apierror.Response](t, resp).Detail)

	resp = env.do("POST", path, `{"content": "A perfectly fine answer"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGet(t *testing.T) {
	env := setupTestEnv(t)
	asker, token := env.createTestUser(t, "asker")
	q := env.createTestQuestion(t, asker)
	other := env.createTestQuestion(t, asker)
	a := env.answer(t, q, token, "An answer to the first question")

	resp := env.do("GET", fmt.Sprintf("/questions/%d/answers/%d", q.ID, a.ID), "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, a.ID, decode[AnswerResponse](t, resp).ID)

	resp = env.do("GET", fmt.Sprintf("/questions/%d/answers/%d", other.ID, a.ID), "", "")
	assert.Equal(t, http.StatusNotFound, resp.Code, "answers are only reachable under their own question")

	resp = env.do("GET", fmt.Sprintf("/questions/%d/answers/999", q.ID), "", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Answer with id 999 was not found", decode[apierror.Response](t, resp).Detail)
}

func TestListOrdering(t *testing.T) {
	env := setupTestEnv(t)
	asker, token := env.createTestUser(t, "asker")
	q := env.createTestQuestion(t, asker)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	stamps := []time.Time{base.Add(time.Hour), base, base.Add(2 * time.Hour)}
	ids := make([]uint, len(stamps))
	for i, ts := range stamps {
		env.handler.now = func() time.Time { return ts }
		ids[i] = env.answer(t, q, token, fmt.Sprintf("Answer number %d here", i)).ID
	}

	list := func(query string) []uint {
		resp := env.do("GET", fmt.Sprintf("/questions/%d/answers%s", q.ID, query), "", "")
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		answers := decode[[]AnswerResponse](t, resp)
		out := make([]uint, len(answers))
		for i, a := range answers {
			out[i] = a.ID
		}
		return out
	}

	assert.Equal(t, ids, list(""))
	assert.Equal(t, ids, list("?order_by=id"))
	assert.Equal(t, []uint{ids[1], ids[0], ids[2]}, list("?order_by=published"))
	assert.Equal(t, []uint{ids[2], ids[0], ids[1]}, list("?order_by=-published"))
	assert.Equal(t, []uint{ids[1]}, list("?offset=1&limit=1"))

	resp := env.do("GET", fmt.Sprintf("/questions/%d/answers?order_by=votes", q.ID), "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = env.do("GET", "/questions/999/answers", "", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdate(t *testing.T) {
	env := setupTestEnv(t)
	asker, _ := env.createTestUser(t, "asker")
	_, owner := env.createTestUser(t, "answerer")
	_, intruder := env.createTestUser(t, "intruder")
	q := env.createTestQuestion(t, asker)
	a := env.answer(t, q, owner, "The original answer text")
	path := fmt.Sprintf("/questions/%d/answers/%d", q.ID, a.ID)

	resp := env.do("PUT", path, `{"content": "Someone else's words"}`, intruder)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = env.do("PUT", path, `{}`, owner)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "No data provided", decode[apierror.Response](t, resp).Detail)

	resp = env.do("PUT", path, `{"content": null}`, owner)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = env.do("PUT", path, `{"content": "The corrected answer text"}`, owner)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decode[AnswerResponse](t, resp)
	assert.Equal(t, "The corrected answer text", updated.Content)
	assert.NotNil(t, updated.Updated)
	assert.Equal(t, "answerer", updated.User.Username)
}

func TestDelete(t *testing.T) {
	env := setupTestEnv(t)
	asker, _ := env.createTestUser(t, "asker")
	_, owner := env.createTestUser(t, "answerer")
	q := env.createTestQuestion(t, asker)
	a := env.answer(t, q, owner, "An answer that will go away")
	path := fmt.Sprintf("/questions/%d/answers/%d", q.ID, a.ID)

	askerToken := mustToken(t, env, "asker")
	assert.Equal(t, http.StatusForbidden, env.do("DELETE", path, "", askerToken).Code,
		"owning the question does not grant rights over its answers")
	assert.Equal(t, http.StatusNoContent, env.do("DELETE", path, "", owner).Code)
	assert.Equal(t, http.StatusNotFound, env.do("GET", path, "", "").Code)
}

func mustToken(t *testing.T, env *testEnv, username string) string {
	t.Helper()
	token, err := env.issuer.Issue(username)
	require.NoError(t, err)
	return token
}
