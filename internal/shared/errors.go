package shared

import "errors"

var (
	// ErrSessionStore indicates the session backend could not be reached.
	ErrSessionStore = errors.New("session store unavailable")
	// ErrSessionCorrupt indicates a stored session could not be decoded.
	ErrSessionCorrupt = errors.New("session payload corrupt")
)
