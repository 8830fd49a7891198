package engine

import (
	"database/sql"
	"errors"

	"github.com/jmeg8r/jdex/internal/jd"
	"github.com/jmeg8r/jdex/internal/store"
)

// notFound turns a missing row into a NOT_FOUND error.
func notFound(err error, entity jd.EntityType, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return jd.NewNotFoundError(entity, id)
	}
	return err
}

// constraintError maps a constraint failure that slipped past the
// explicit guards. Guards run first, so reaching these means the data was
// already inconsistent or a concurrent console edit raced the call.
func constraintError(err error, entity jd.EntityType, field, number string) error {
	switch {
	case store.IsUniqueViolation(err):
		dup := jd.NewDuplicateError(entity, field, number)
		dup.Err = err
		return dup
	case store.IsForeignKeyViolation(err):
		v := jd.NewValidationError(field, string(entity)+" references a parent that does not exist")
		v.Err = err
		return v
	case store.IsCheckViolation(err):
		v := jd.NewValidationError(field, string(entity)+" has a value the schema rejects")
		v.Err = err
		return v
	}
	return err
}
