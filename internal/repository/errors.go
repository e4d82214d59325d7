package repository

import "errors"

// Common repository errors
var (
	ErrBoardNotFound  = errors.New("board not found")
	ErrColumnNotFound = errors.New("column not found")
	ErrTaskNotFound   = errors.New("task not found")
	ErrMemberNotFound = errors.New("member not found")
)
