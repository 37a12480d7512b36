package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mikepea/quorum/pkg/quorum/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// NormalizeTag canonicalizes a tag name: surrounding space is dropped,
// inner whitespace runs become a single hyphen and letters are lowercased.
func NormalizeTag(name string) string {
	joined := strings.Join(strings.Fields(name), "-")
	return cases.Lower(language.Und).String(joined)
}

// TagCount is a tag with the number of questions carrying it.
type TagCount struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	QuestionCount int    `json:"question_count"`
}

// GetTagByName looks a tag up by its normalized name.
func (s *Store) GetTagByName(ctx context.Context, name string) (*models.Tag, error) {
	return first[models.Tag](s.conn(ctx).Where("name = ?", NormalizeTag(name)))
}

// ResolveTags maps names to Tag rows, creating the missing ones. Names that
// normalize to the same value resolve to one Tag; empty names are skipped.
func (s *Store) ResolveTags(ctx context.Context, names []string) ([]models.Tag, error) {
	seen := make(map[string]bool, len(names))
	tags := make([]models.Tag, 0, len(names))

	for _, raw := range names {
		name := NormalizeTag(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag, err := s.getOrCreateTag(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func (s *Store) getOrCreateTag(ctx context.Context, name string) (*models.Tag, error) {
	tag, err := s.GetTagByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if tag != nil {
		return tag, nil
	}

	tag = &models.Tag{Name: name}
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(tag).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Created concurrently; use the winner's row.
		return s.GetTagByName(ctx, name)
	}
	if err != nil {
		return nil, fmt.Errorf("create tag %q: %w", name, err)
	}
	return tag, nil
}

// ListTags returns every tag with its question count, most used first.
func (s *Store) ListTags(ctx context.Context) ([]TagCount, error) {
	var results []TagCount
	err := s.conn(ctx).Table("tag").
		Select("tag.id, tag.name, COUNT(tagged_questions.question_id) AS question_count").
		Joins("LEFT JOIN tagged_questions ON tagged_questions.tag_id = tag.id").
		Group("tag.id, tag.name").
		Order("question_count DESC, tag.name ASC").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return results, nil
}
