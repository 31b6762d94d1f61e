package usecase

import (
	"errors"

	"handyman-recruitment-backend/pkg/apperror"
)

// repoError passes classified errors through and hides everything else
// behind a generic internal error.
func repoError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Internal(err)
}
