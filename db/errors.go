package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("invalid request")
)

// notFound turns gorm's missing-row error into ErrNotFound naming what was
// looked up. Other errors pass through.
func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
	}
	return err
}

// conflict maps a unique-index violation to ErrConflict.
func conflict(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", ErrConflict, msg)
	}
	return err
}
