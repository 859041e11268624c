package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound                  = errors.New("not found")
	ErrForbidden                 = errors.New("forbidden")
	ErrConstraintViolation       = errors.New("constraint violation")
	ErrExternalSourceUnavailable = errors.New("external source unavailable")
	ErrInvalidArgument           = errors.New("invalid argument")
	ErrConflict                  = errors.New("conflict")
)

// translateStoreError maps repository errors onto the service sentinels.
// Unknown errors are returned unchanged.
func translateStoreError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %s", ErrConstraintViolation, what)
	default:
		return err
	}
}
