// Package authz holds the ownership check applied before any read or
// mutation of a user-owned record.
package authz

import (
	"context"

	"github.com/EmpoweredVote/EV-Notepad/internal/apperrors"
	"github.com/EmpoweredVote/EV-Notepad/internal/utils"
)

// Owned is implemented by every record that belongs to exactly one user.
type Owned interface {
	OwnerID() uint
}

// Owns reports whether actingID owns res.
func Owns(actingID uint, res Owned) bool {
	return actingID != 0 && res.OwnerID() == actingID
}

// Check resolves the acting identity from ctx and verifies it owns res.
// The record must already have been looked up: a missing record is a
// not-found error at the caller, never an authorization error here.
func Check(ctx context.Context, res Owned) error {
	actingID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return apperrors.Authentication("Please log in to access this page.")
	}
	if !Owns(actingID, res) {
		return apperrors.Authorization("You are not authorized to access this resource")
	}
	return nil
}
