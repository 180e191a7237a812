package email

import "errors"

var (
	// ErrInvalidConfig indicates missing or malformed sender configuration.
	ErrInvalidConfig = errors.New("email: invalid config")

	// ErrInvalidParams indicates the send request failed validation.
	ErrInvalidParams = errors.New("email: invalid send params")

	// ErrFailedToSend indicates the delivery provider rejected the message.
	ErrFailedToSend = errors.New("email: failed to send")
)
