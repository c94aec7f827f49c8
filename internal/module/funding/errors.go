package funding

import "errors"

// Domain errors for the funding module.
var (
	ErrRequestNotFound  = errors.New("funding request not found")
	ErrInvalidAmount    = errors.New("funding amount must be positive")
	ErrDuplicateRequest = errors.New("a pending funding request already exists")
	ErrNotProjectOwner  = errors.New("only the project owner may verify funding")
	ErrAlreadyProcessed = errors.New("funding request is not pending")
	ErrProjectNotFound  = errors.New("project not found")
)
