package page

import "errors"

var (
	// ErrNotFound covers absent pages, pages of another owner and, for purge,
	// pages that are not in the trash. Callers cannot tell these apart.
	ErrNotFound = errors.New("page not found")
	// ErrConflict is returned when trashing a page that is already trashed.
	ErrConflict = errors.New("page already in trash")
	// ErrValidation marks input rejected before any store access.
	ErrValidation = errors.New("invalid page input")
	// ErrStorageUnavailable wraps backend failures.
	ErrStorageUnavailable = errors.New("page storage unavailable")
)
