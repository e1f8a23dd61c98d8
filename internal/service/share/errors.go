package share

import "errors"

var (
	ErrExamNotFound = errors.New("exam not found")
	ErrLinkNotFound = errors.New("share link not found")
	// ErrStorageUnavailable is a signing failure; no view was counted.
	ErrStorageUnavailable = errors.New("document storage unavailable")
)
