package postgres

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// The postgres driver is configured with TranslateError, so constraint
// violations surface as GORM sentinel errors rather than raw pq errors.

func isUniqueConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isForeignKeyConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated)
}
