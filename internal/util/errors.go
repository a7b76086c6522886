package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrCourseNotFound     = errors.New("course not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrInvalidChoice      = errors.New("choice does not belong to the question")
	ErrInvalidCatalog     = errors.New("invalid catalog")
	ErrInvalidOccupation  = errors.New("invalid occupation")
)
