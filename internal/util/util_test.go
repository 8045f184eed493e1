package util

import (
	"edunest_backend/internal/model"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrNotEnrolled, http.StatusForbidden},
		{ErrCourseNotFound, http.StatusNotFound},
		{ErrAlreadyEnrolled, http.StatusConflict},
		{fmt.Errorf("enroll: %w", ErrAlreadyReviewed), http.StatusConflict},
		{ErrFileTooLarge, http.StatusBadRequest},
		{ErrOwnCourse, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, StatusFor(c.err), c.err.Error())
	}
}

func TestHasAllowedExtension(t *testing.T) {
	assert.True(t, HasAllowedExtension("lesson.MP4", AllowedVideoExtensions))
	assert.True(t, HasAllowedExtension("notes.pdf", AllowedExtensions(UploadDocument)))
	assert.False(t, HasAllowedExtension("notes.pdf", AllowedVideoExtensions))
	assert.False(t, HasAllowedExtension("payload.exe", AllowedDocumentExtensions))
	assert.False(t, HasAllowedExtension("README", AllowedDocumentExtensions))
	assert.Nil(t, AllowedExtensions("archive"))
}

func TestMimeTypeAndSanitize(t *testing.T) {
	assert.Equal(t, "video/mp4", MimeTypeByExtension("a.MP4"))
	assert.Equal(t, "application/pdf", MimeTypeByExtension("a.pdf"))
	assert.Equal(t, "application/octet-stream", MimeTypeByExtension("a.unknownext"))

	assert.Equal(t, "Week-1.pdf", SanitizeFilename("../../Week 1.pdf"))
	assert.Equal(t, "evil.txt", SanitizeFilename(`C:\tmp\evil.txt`))
}

func TestParsePage(t *testing.T) {
	page, limit := ParsePage("", "", 10, 50)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)

	page, limit = ParsePage("3", "200", 10, 50)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, limit)

	page, limit = ParsePage("-1", "abc", 20, 50)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)
}

func TestParseTimeAndUint(t *testing.T) {
	ts, err := ParseTime("2026-03-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.March, ts.Month())

	day, err := ParseTime("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, 15, day.Day())

	_, err = ParseTime("15/03/2026")
	assert.Error(t, err)

	assert.Equal(t, uint(42), MustParseUint("42"))
	assert.Equal(t, uint(0), MustParseUint("x"))
}

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Username: "ada", Role: model.Instructor}
	user.ID = 7

	token, claims, err := GenerateJWT(user, "secret-a", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := ParseJWT(token, "secret-a")
	require.NoError(t, err)
	assert.Equal(t, uint(7), parsed.UserID)
	assert.Equal(t, model.Instructor, parsed.Role)
	assert.Equal(t, claims.ID, parsed.ID)

	_, err = ParseJWT(token, "secret-b")
	assert.Error(t, err)

	expired, _, err := GenerateJWT(user, "secret-a", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret-a")
	assert.Error(t, err)
}

func TestParseProbeOutput(t *testing.T) {
	out := `{"streams":[{"codec_type":"audio"},{"codec_type":"video","width":1920,"height":1080}],
		"format":{"duration":"125.5","size":"2048","format_name":"mov,mp4,m4a"}}`

	info, err := parseProbeOutput(out, 99)
	require.NoError(t, err)
	assert.InDelta(t, 125.5, info.Duration, 0.001)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, int64(2048), info.Size)
	assert.Equal(t, "mov", info.Format)

	info, err = parseProbeOutput(`{"format":{}}`, 99)
	require.NoError(t, err)
	assert.Equal(t, int64(99), info.Size)
	assert.Equal(t, "unknown", info.Format)

	_, err = parseProbeOutput("not json", 0)
	assert.Error(t, err)
}
