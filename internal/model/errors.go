package model

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// ErrNotFound is returned by stores when an entity does not exist.
var ErrNotFound = errors.New("not found")

// APIError is an error with a client-facing message and HTTP status.
type APIError struct {
	HTTPStatus int
	Message    string
	ComingSoon bool
	Platform   string
	TaskID     uuid.UUID
}

func (e *APIError) Error() string {
	return e.Message
}

// NewErrEmptyURL reports a missing or blank URL.
func NewErrEmptyURL() *APIError {
	return &APIError{HTTPStatus: http.StatusBadRequest, Message: "URL must not be empty"}
}

// NewErrInvalidMaxSize reports a size limit outside 1..max.
func NewErrInvalidMaxSize(max int) *APIError {
	return &APIError{HTTPStatus: http.StatusBadRequest, Message: fmt.Sprintf("File size must be between 1 and %d MB", max)}
}

// NewErrPlatformComingSoon reports a known platform that is not supported yet.
func NewErrPlatformComingSoon(platform string) *APIError {
	return &APIError{
		HTTPStatus: http.StatusOK,
		Message:    fmt.Sprintf("Support for %s is coming soon! 🚀", platform),
		ComingSoon: true,
		Platform:   platform,
	}
}

// NewErrUnsupportedPlatform reports a URL on an unknown platform.
func NewErrUnsupportedPlatform() *APIError {
	return &APIError{HTTPStatus: http.StatusBadRequest, Message: "Unsupported platform. Only YouTube is supported."}
}

// NewErrDownloadFailed reports a fetch that produced no file within the limit.
func NewErrDownloadFailed(maxSizeMB int, taskID uuid.UUID) *APIError {
	return &APIError{
		HTTPStatus: http.StatusBadRequest,
		Message:    fmt.Sprintf("Failed to download the file or it exceeds %d MB", maxSizeMB),
		TaskID:     taskID,
	}
}

// NewErrTaskNotFound reports an unknown download task.
func NewErrTaskNotFound() *APIError {
	return &APIError{HTTPStatus: http.StatusNotFound, Message: "Download task not found"}
}

// NewErrInvalidFileName reports a file name that escapes the download directory.
func NewErrInvalidFileName() *APIError {
	return &APIError{HTTPStatus: http.StatusBadRequest, Message: "Invalid file name"}
}

// NewErrFileNotFound reports a missing downloaded file.
func NewErrFileNotFound() *APIError {
	return &APIError{HTTPStatus: http.StatusNotFound, Message: "File not found"}
}
