package publish

import "errors"

// Sentinel kinds for publish errors; callers match with errors.Is.
var (
	ErrWrite = errors.New("artifact write failed")
)
