package notification

import "errors"

// Domain errors for the notification module.
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("notification belongs to another user")
	ErrUnknownType          = errors.New("unknown notification type")
	ErrNoRecipient          = errors.New("event resolves to no recipient")
)
