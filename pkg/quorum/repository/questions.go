package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikepea/quorum/pkg/quorum/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuestionFilter narrows ListQuestions. Search matches a substring of the
// title; Tag restricts to questions carrying that (normalized) tag.
type QuestionFilter struct {
	Page
	Search string
	Tag    string
}

func (s *Store) questions(ctx context.Context) *gorm.DB {
	return s.conn(ctx).
		Preload("User").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tag.name ASC") })
}

// GetQuestion returns the question with its owner and tags, or nil.
func (s *Store) GetQuestion(ctx context.Context, id uint) (*models.Question, error) {
	return first[models.Question](s.questions(ctx).Where("question.id = ?", id))
}

// QuestionExists reports whether a question with id exists.
func (s *Store) QuestionExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.conn(ctx).Model(&models.Question{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListQuestions returns questions in id order.
func (s *Store) ListQuestions(ctx context.Context, f QuestionFilter) ([]models.Question, error) {
	q := s.questions(ctx).Order("question.id ASC")

	if f.Search != "" {
		q = q.Where("question.title LIKE ? ESCAPE '\\'", "%"+escapeLike(f.Search)+"%")
	}
	if f.Tag != "" {
		tagged := s.conn(ctx).Table("tagged_questions").
			Select("tagged_questions.question_id").
			Joins("JOIN tag ON tag.id = tagged_questions.tag_id").
			Where("tag.name = ?", NormalizeTag(f.Tag))
		q = q.Where("question.id IN (?)", tagged)
	}

	var questions []models.Question
	if err := f.Page.apply(q).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// CreateQuestion inserts q and links its Tags, which must already exist.
func (s *Store) CreateQuestion(ctx context.Context, q *models.Question) error {
	if err := s.conn(ctx).Omit("User", "Tags.*").Create(q).Error; err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

// SaveQuestion writes q's own columns. Tags are changed with ReplaceTags.
func (s *Store) SaveQuestion(ctx context.Context, q *models.Question) error {
	if err := s.conn(ctx).Omit(clause.Associations).Save(q).Error; err != nil {
		return fmt.Errorf("save question: %w", err)
	}
	return nil
}

// ReplaceTags sets the question's tags to exactly tags; an empty slice
// unlinks all of them. Tag rows themselves are kept.
func (s *Store) ReplaceTags(ctx context.Context, q *models.Question, tags []models.Tag) error {
	assoc := s.conn(ctx).Model(q).Omit("Tags.*").Association("Tags")
	var err error
	if len(tags) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(tags)
	}
	if err != nil {
		return fmt.Errorf("replace tags: %w", err)
	}
	q.Tags = tags
	return nil
}

// DeleteQuestion removes the question, its answers and its tag links.
func (s *Store) DeleteQuestion(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
			return fmt.Errorf("delete answers: %w", err)
		}
		if err := tx.Exec("DELETE FROM tagged_questions WHERE question_id = ?", id).Error; err != nil {
			return fmt.Errorf("delete tag links: %w", err)
		}
		if err := tx.Delete(&models.Question{}, id).Error; err != nil {
			return fmt.Errorf("delete question: %w", err)
		}
		return nil
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
