package project

import "errors"

// Domain errors for the project module.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrEmptyTitle      = errors.New("project title is required")
	ErrInvalidGoal     = errors.New("funding goal cannot be negative")
)
