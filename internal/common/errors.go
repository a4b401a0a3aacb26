package common

import (
	"errors"

	"github.com/lib/pq"
)

var ErrRecordNotFound = errors.New("record not found")

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// UniqueViolation reports whether err is a postgres unique constraint error on
// the named constraint.
func UniqueViolation(err error, constraint string) bool {
	return pqViolation(err, pqUniqueViolation, constraint)
}

// ForeignKeyViolation reports whether err is a postgres foreign key error on
// the named constraint.
func ForeignKeyViolation(err error, constraint string) bool {
	return pqViolation(err, pqForeignKeyViolation, constraint)
}

func pqViolation(err error, code pq.ErrorCode, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code && pqErr.Constraint == constraint
	}

	return false
}
