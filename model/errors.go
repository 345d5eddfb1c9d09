package model

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateName   = errors.New("a quiz with this name already exists")
	ErrMalformed       = errors.New("malformed stored payload")
	ErrEmptyQuiz       = errors.New("quiz has no questions")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalid         = errors.New("invalid quiz")
)
