package accesstoken

import "errors"

var (
	// ErrUserIDRequired is returned by [Manager.CreateSession] when the input
	// carries an empty user ID.
	ErrUserIDRequired = errors.New("user id is required")
	// ErrUnauthorized is the gate's terminal rejection state. It always
	// carries a human-readable reason rendered through the message formatter.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNilRedis is returned by [Builder.Build] when no Redis client was
	// supplied.
	ErrNilRedis = errors.New("nil redis client")
	// ErrBuilderUsed is returned by [Builder.Build] on reuse of a consumed
	// builder.
	ErrBuilderUsed = errors.New("builder already used")
)
