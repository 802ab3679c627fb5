package classifier

import (
	"errors"
)

// Kind is the user-facing failure category of a submission.
type Kind string

const (
	KindRateLimit Kind = "rate_limit"
	KindCredits   Kind = "credits"
	KindAuth      Kind = "auth"
	KindUpload    Kind = "upload"
	KindUnknown   Kind = "unknown"
)

// Messages returned at the classifier boundary.
const (
	MsgRateLimit          = "Rate limit exceeded. Please try again in a moment."
	MsgCreditsExhausted   = "AI credits exhausted. Please add credits to continue."
	MsgUnauthorized       = "Unauthorized"
	MsgAnalysisFailed     = "AI analysis failed"
	MsgNoStructuredResult = "AI did not return structured results"
	MsgInvalidResult      = "AI returned an invalid result"
	MsgNotConfigured      = "AI service not configured"
	MsgNoPhotos           = "No photos provided"
)

var guidance = map[Kind]string{
	KindRateLimit: "Too many requests. Please wait a moment and try again.",
	KindCredits:   "The analysis service is temporarily unavailable. Please contact support.",
	KindAuth:      "Your session has expired. Please sign in again.",
	KindUpload:    "We couldn't upload your photos. Check your connection and photo size.",
	KindUnknown:   "Something went wrong during analysis. Please try again.",
}

// Error is a failure tagged with its Kind.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// NewError creates a tagged error. err may be nil.
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the tagged kind of err, or KindUnknown for untagged errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// MessageOf returns the user-facing message of err without internal detail.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var ce *Error
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return "Unknown error"
}

// Guidance returns the recovery hint shown for kind.
func Guidance(kind Kind) string {
	if g, ok := guidance[kind]; ok {
		return g
	}
	return guidance[KindUnknown]
}
