package capture

import "errors"

var (
	ErrInvalidTransition    = errors.New("event not allowed in current step")
	ErrSubmissionInProgress = errors.New("analysis already in progress")
	ErrNotEnoughPhotos      = errors.New("at least 2 photos are required")
	ErrUnknownEvent         = errors.New("unknown event")
)

// Notice is the user-facing explanation of a rejected file.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

var (
	NoticeInvalidFile  = Notice{Title: "Invalid file", Description: "Please upload an image file."}
	NoticeFileTooLarge = Notice{Title: "File too large", Description: "Please use an image under 10MB."}
)

// RejectionError reports a file refused at capture time. The wizard is unchanged.
type RejectionError struct {
	Notice Notice
	Reason string
}

func (e *RejectionError) Error() string {
	if e.Reason != "" {
		return e.Notice.Title + ": " + e.Reason
	}
	return e.Notice.Title
}
