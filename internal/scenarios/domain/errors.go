package domain

import "errors"

var (
	ErrNotFound     = errors.New("scenario not found")
	ErrSaveInFlight = errors.New("a save is already in progress for this scenario")
	ErrNotPersisted = errors.New("scenario has not been saved yet")
	ErrDeleted      = errors.New("scenario has been deleted")
)
