// Package policy holds the authorization rules for mutating content.
package policy

import (
	"errors"

	"github.com/mikepea/quorum/pkg/quorum/models"
)

// ErrForbidden is returned when the actor does not own the entity.
var ErrForbidden = errors.New("not the owner")

// Owned is anything with a single owning user.
type Owned interface {
	OwnerID() uint
}

// RequireOwner allows the operation only when actor created entity.
// There is no admin override.
func RequireOwner(entity Owned, actor *models.User) error {
	if entity == nil || actor == nil || actor.ID == 0 {
		return ErrForbidden
	}
	if entity.OwnerID() != actor.ID {
		return ErrForbidden
	}
	return nil
}
