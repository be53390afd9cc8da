package store

import (
	"errors"

	"printsettings/pkg/platform/sentinel"
)

func isConflict(err error) bool {
	return errors.Is(err, sentinel.ErrConflict)
}
