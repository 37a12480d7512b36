package repository

import (
	"context"
	"fmt"

	"github.com/mikepea/quorum/pkg/quorum/models"
	"gorm.io/gorm/clause"
)

// AnswerOrder selects the sort order of ListAnswers.
type AnswerOrder string

const (
	AnswerOrderID            AnswerOrder = "id"
	AnswerOrderPublished     AnswerOrder = "published"
	AnswerOrderPublishedDesc AnswerOrder = "-published"
)

// Valid reports whether o is a known order. The empty order is valid and
// means AnswerOrderID.
func (o AnswerOrder) Valid() bool {
	switch o {
	case "", AnswerOrderID, AnswerOrderPublished, AnswerOrderPublishedDesc:
		return true
	}
	return false
}

func (o AnswerOrder) clause() string {
	switch o {
	case AnswerOrderPublished:
		return "answer.published ASC, answer.id ASC"
	case AnswerOrderPublishedDesc:
		return "answer.published DESC, answer.id DESC"
	default:
		return "answer.id ASC"
	}
}

// AnswerFilter narrows ListAnswers.
type AnswerFilter struct {
	Page
	Order AnswerOrder
}

// GetAnswer returns the answer with id under questionID with its owner,
// or nil.
func (s *Store) GetAnswer(ctx context.Context, questionID, answerID uint) (*models.Answer, error) {
	return first[models.Answer](s.conn(ctx).Preload("User").
		Where("answer.question_id = ? AND answer.id = ?", questionID, answerID))
}

// ListAnswers returns the answers to a question.
func (s *Store) ListAnswers(ctx context.Context, questionID uint, f AnswerFilter) ([]models.Answer, error) {
	q := s.conn(ctx).Preload("User").
		Where("answer.question_id = ?", questionID).
		Order(f.Order.clause())

	var answers []models.Answer
	if err := f.Page.apply(q).Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return answers, nil
}

// CreateAnswer inserts a.
func (s *Store) CreateAnswer(ctx context.Context, a *models.Answer) error {
	if err := s.conn(ctx).Omit(clause.Associations).Create(a).Error; err != nil {
		return fmt.Errorf("create answer: %w", err)
	}
	return nil
}

// SaveAnswer writes a's columns.
func (s *Store) SaveAnswer(ctx context.Context, a *models.Answer) error {
	if err := s.conn(ctx).Omit(clause.Associations).Save(a).Error; err != nil {
		return fmt.Errorf("save answer: %w", err)
	}
	return nil
}

// DeleteAnswer removes one answer.
func (s *Store) DeleteAnswer(ctx context.Context, id uint) error {
	if err := s.conn(ctx).Delete(&models.Answer{}, id).Error; err != nil {
		return fmt.Errorf("delete answer: %w", err)
	}
	return nil
}
