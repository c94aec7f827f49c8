package moderation

import "errors"

// Domain errors for the moderation module.
var (
	ErrUnknownEntityKind = errors.New("unknown entity kind")
	ErrContentHidden     = errors.New("content rejected by moderation")
)
