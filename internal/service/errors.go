package service

import (
	"errors"

	"github.com/sseth345/srilanka-learning-platform/internal/repository"
)

var (
	// ErrForbidden indicates the caller lacks the role or ownership for the operation.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrInvalidCredentials is returned for unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrDuplicateSubmission indicates the student already submitted the exercise.
	ErrDuplicateSubmission = repository.ErrDuplicateSubmission
	// ErrInvalidInput wraps semantic validation failures not expressible as struct tags.
	ErrInvalidInput = errors.New("invalid input")

	ErrUserNotFound       = errors.New("user not found")
	ErrExerciseNotFound   = errors.New("exercise not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrContentNotFound    = errors.New("content not found")
	ErrBookNotFound       = errors.New("book not found")
	ErrVideoNotFound      = errors.New("video not found")
	ErrDiscussionNotFound = errors.New("discussion not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrNewsNotFound       = errors.New("news not found")

	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the detected MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	// ErrFileRequired indicates a mandatory upload was missing.
	ErrFileRequired = errors.New("file is required")
	// ErrMediaUnavailable indicates no media host is configured.
	ErrMediaUnavailable = errors.New("media storage is not configured")
)

// IsNotFound reports whether err is one of the entity not-found errors.
func IsNotFound(err error) bool {
	for _, target := range []error{
		ErrUserNotFound,
		ErrExerciseNotFound,
		ErrSubmissionNotFound,
		ErrContentNotFound,
		ErrBookNotFound,
		ErrVideoNotFound,
		ErrDiscussionNotFound,
		ErrCommentNotFound,
		ErrNewsNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
