package client

import "errors"

var (
	// ErrInsufficientPermissions is the local fail-fast permission denial.
	// It is advisory: its absence never guarantees server-side success,
	// since the cache may be stale or absent.
	ErrInsufficientPermissions = errors.New("current user lacks the required permissions")

	// ErrAlreadyCrossposted rejects crossposting a message already published.
	ErrAlreadyCrossposted = errors.New("message has already been crossposted")

	// ErrCannotCrosspost rejects crossposting a message that is itself a
	// crosspost or is not a regular message.
	ErrCannotCrosspost = errors.New("message cannot be crossposted")

	// ErrNotAuthor rejects mutations reserved for the message's author.
	ErrNotAuthor = errors.New("current user is not the author of the message")

	// ErrItemMissing rejects operations that need a guild context on a
	// message that has none.
	ErrItemMissing = errors.New("message has no guild context")
)
