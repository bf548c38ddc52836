package utils

import "errors"

var (
	ErrorRecordNotFound = errors.New("record not found")
	ErrorForbidden      = errors.New("operation not allowed for this role")
)
