package util

import "errors"

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")

	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionRevoked     = errors.New("session revoked")

	ErrCourseNotFound  = errors.New("course not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrLectureNotFound = errors.New("lecture not found")
	ErrNotCourseOwner  = errors.New("only the course instructor can do this")

	ErrNotEnrolled       = errors.New("you are not enrolled in this course")
	ErrAlreadyEnrolled   = errors.New("already enrolled in this course")
	ErrOwnCourse         = errors.New("instructors cannot enroll in their own course")
	ErrEnrollmentMissing = errors.New("enrollment not found")

	ErrAlreadyReviewed = errors.New("you have already reviewed this course")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")

	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadyGraded      = errors.New("submission already graded")
	ErrScoreOutOfRange    = errors.New("score exceeds assignment max score")

	ErrMessageToSelf    = errors.New("cannot send a message to yourself")
	ErrEventNotFound    = errors.New("calendar event not found")
	ErrInvalidTimeRange = errors.New("end time must not be before start time")

	ErrInvalidFileType = errors.New("file type not allowed")
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidImage    = errors.New("invalid image file")

	ErrTestimonialNotFound = errors.New("testimonial not found")
)
