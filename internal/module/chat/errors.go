package chat

import "errors"

// Domain errors for the chat module.
var (
	ErrMessageNotFound = errors.New("message not found")
	ErrMissingReceiver = errors.New("receiver is required")
	ErrEmptyContent    = errors.New("message content is required")
	ErrNotReceiver     = errors.New("message belongs to another receiver")
	ErrContentRejected = errors.New("message rejected by moderation")
)
