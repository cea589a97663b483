package gorm

import (
	"errors"

	stdgorm "gorm.io/gorm"
)

// IsNotFound reports a lookup that matched no row, wrapped or not.
func IsNotFound(err error) bool {
	return errors.Is(err, stdgorm.ErrRecordNotFound)
}

// IsFoundButHasErrors reports any failure other than a missing row.
func IsFoundButHasErrors(err error) bool {
	return err != nil && !IsNotFound(err)
}

func HasDbIssues(err error) bool {
	return err != nil
}
