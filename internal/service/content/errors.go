package content

import "errors"

var (
	ErrPatientNotFound  = errors.New("patient not found")
	ErrNotFound         = errors.New("content not found")
	ErrAlreadyPublished = errors.New("content is already published")
	ErrTitleRequired    = errors.New("title is required")
	ErrFileRequired     = errors.New("exam file is required")
	ErrFileTooLarge     = errors.New("exam file is too large")
)
