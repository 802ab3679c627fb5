package analysis

import "errors"

var (
	ErrInvalidAngle = errors.New("invalid angle")
	ErrNoPhotos     = errors.New("session has no photos")
)
