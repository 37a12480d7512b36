package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikepea/quorum/pkg/quorum/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
)

// GetUserByID returns the user with id, or nil.
func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return first[models.User](s.conn(ctx).Where("id = ?", id))
}

// GetUserByUsername returns the user with exactly this username, or nil.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return first[models.User](s.conn(ctx).Where("username = ?", username))
}

// GetUserByEmail returns the user with exactly this email, or nil.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](s.conn(ctx).Where("email = ?", email))
}

// CreateUser inserts u after checking that its username and email are free.
// The unique indexes still guard against a concurrent insert slipping past
// the check; that violation is reported with the same errors.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if err := s.checkUnique(ctx, u.Username, u.Email, 0); err != nil {
		return err
	}
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(u).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return s.duplicateCause(ctx, u.Username, u.Email, 0, err)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateUser writes u's username, email and password hash.
func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	if err := s.checkUnique(ctx, u.Username, u.Email, u.ID); err != nil {
		return err
	}
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Save(u).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return s.duplicateCause(ctx, u.Username, u.Email, u.ID, err)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// DeleteUser removes the user, their questions (with every answer on them
// and their tag links) and their answers on other questions.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Question{}).Select("id").Where("user_id = ?", id)

		if err := tx.Where("question_id IN (?) OR user_id = ?", owned, id).Delete(&models.Answer{}).Error; err != nil {
			return fmt.Errorf("delete answers: %w", err)
		}
		if err := tx.Exec("DELETE FROM tagged_questions WHERE question_id IN (?)", owned).Error; err != nil {
			return fmt.Errorf("delete tag links: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("delete questions: %w", err)
		}
		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}

// checkUnique reports which unique field is already taken by a user other
// than selfID. Username is checked first.
func (s *Store) checkUnique(ctx context.Context, username, email string, selfID uint) error {
	byName, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if byName != nil && byName.ID != selfID {
		return ErrDuplicateUsername
	}

	byEmail, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if byEmail != nil && byEmail.ID != selfID {
		return ErrDuplicateEmail
	}
	return nil
}

// duplicateCause works out which field a unique violation was about.
func (s *Store) duplicateCause(ctx context.Context, username, email string, selfID uint, cause error) error {
	if err := s.checkUnique(ctx, username, email, selfID); err != nil {
		return err
	}
	return fmt.Errorf("save user: %w", cause)
}
