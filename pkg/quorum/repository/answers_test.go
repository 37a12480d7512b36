package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAnswerScopedToQuestion(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "test_user")
	q1 := createTestQuestion(t, s, u, "First question", "go")
	q2 := createTestQuestion(t, s, u, "Second question", "go")
	a := createTestAnswer(t, s, u, q1, time.Now().UTC())

	found, err := s.GetAnswer(ctx, q1.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "test_user", found.User.Username)

	wrong, err := s.GetAnswer(ctx, q2.ID, a.ID)
	require.NoError(t, err)
	assert.Nil(t, wrong, "Expected an answer to be found only under its own question")
}

func TestListAnswersOrdering(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "test_user")
	q := createTestQuestion(t, s, u, "A question", "go")

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	// Inserted out of publish order so id and publish orders differ.
	middle := createTestAnswer(t, s, u, q, base.Add(time.Hour))
	oldest := createTestAnswer(t, s, u, q, base)
	newest := createTestAnswer(t, s, u, q, base.Add(2*time.Hour))

	ids := func(order AnswerOrder, page Page) []uint {
		answers, err := s.ListAnswers(ctx, q.ID, AnswerFilter{Page: page, Order: order})
		require.NoError(t, err)
		out := make([]uint, len(answers))
		for i, a := range answers {
			out[i] = a.ID
		}
		return out
	}

	assert.Equal(t, []uint{middle.ID, oldest.ID, newest.ID}, ids("", Page{}))
	assert.Equal(t, []uint{middle.ID, oldest.ID, newest.ID}, ids(AnswerOrderID, Page{}))
	assert.Equal(t, []uint{oldest.ID, middle.ID, newest.ID}, ids(AnswerOrderPublished, Page{}))
	assert.Equal(t, []uint{newest.ID, middle.ID, oldest.ID}, ids(AnswerOrderPublishedDesc, Page{}))
	assert.Equal(t, []uint{middle.ID}, ids(AnswerOrderPublishedDesc, Page{Offset: 1, Limit: 1}))
}

func TestAnswerOrderValid(t *testing.T) {
	assert.True(t, AnswerOrder("").Valid())
	assert.True(t, AnswerOrderID.Valid())
	assert.True(t, AnswerOrderPublished.Valid())
	assert.True(t, AnswerOrderPublishedDesc.Valid())
	assert.False(t, AnswerOrder("random").Valid())
}

func TestSaveAndDeleteAnswer(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "test_user")
	q := createTestQuestion(t, s, u, "A question", "go")
	a := createTestAnswer(t, s, u, q, time.Now().UTC())

	now := time.Now().UTC()
	a.Content = "Edited content for the answer"
	a.Updated = &now
	require.NoError(t, s.SaveAnswer(ctx, a))

	loaded, err := s.GetAnswer(ctx, q.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited content for the answer", loaded.Content)
	assert.NotNil(t, loaded.Updated)

	require.NoError(t, s.DeleteAnswer(ctx, a.ID))
	gone, err := s.GetAnswer(ctx, q.ID, a.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
