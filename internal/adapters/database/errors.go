package database

import (
	"errors"

	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE of a unique constraint violation
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
