package httptransport

import (
	"context"
	"errors"

	"printsettings/internal/user/models"
	userservice "printsettings/internal/user/service"
)

// UserFinder is the part of the credential store the auth middleware needs.
type UserFinder interface {
	Find(ctx context.Context, key string, kind models.SearchKind) (*models.User, error)
}

type userVerifier struct {
	users UserFinder
}

func (v userVerifier) UserExists(ctx context.Context, userID string) (bool, error) {
	_, err := v.users.Find(ctx, userID, models.ByID)
	if errors.Is(err, userservice.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}
