package collaboration

import "errors"

// Domain errors for the collaboration module.
var (
	ErrRequestNotFound     = errors.New("collaboration request not found")
	ErrDuplicateRequest    = errors.New("a pending collaboration request already exists")
	ErrAlreadyCollaborator = errors.New("user is already a collaborator")
	ErrOwnProject          = errors.New("project owner cannot request collaboration")
	ErrNotProjectOwner     = errors.New("only the project owner may do this")
	ErrAlreadyProcessed    = errors.New("collaboration request is not pending")
	ErrNotCollaborator     = errors.New("user is not a collaborator")
	ErrCannotRemoveOwner   = errors.New("project owner cannot be removed")
	ErrProjectNotFound     = errors.New("project not found")
)
