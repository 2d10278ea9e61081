package booking

import "errors"

// The workflow surfaces exactly four failure categories. Handlers map them
// to status codes; the bot renders them as conversational sentences.
// Anything that is not one of these sentinels is a persistence failure,
// wrapped and propagated without retries.
var (
	// ErrInvalidInput marks a malformed or incomplete request shape.
	ErrInvalidInput = errors.New("booking: invalid input")

	// ErrSlotUnavailable marks a slot that is already booked, including a
	// race lost inside the transaction.
	ErrSlotUnavailable = errors.New("booking: slot unavailable")

	// ErrNotFound marks a missing appointment for the given tracking
	// id/email pair.
	ErrNotFound = errors.New("booking: appointment not found")
)
