package recovery

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClassification(t *testing.T) {
	tests := []struct {
		errType     ErrorType
		recoverable bool
		severity    Severity
	}{
		{TypeTemplateNotFound, false, SeverityMedium},
		{TypeTemplateLoadFailed, true, SeverityMedium},
		{TypeTemplateSaveFailed, true, SeverityMedium},
		{TypeInvalidTemplateData, false, SeverityMedium},
		{TypePermissionDenied, false, SeverityHigh},
		{TypeNetworkError, true, SeverityLow},
		{TypeServerError, true, SeverityHigh},
		{TypeUnknownError, false, SeverityMedium},
	}

	for _, tc := range tests {
		t.Run(string(tc.errType), func(t *testing.T) {
			err := New(tc.errType, "boom", nil, nil)

			assert.Equal(t, tc.recoverable, err.Recoverable)
			assert.Equal(t, tc.severity, err.Severity)
			assert.NotEmpty(t, err.UserMessage)
			assert.False(t, err.Timestamp.IsZero())
		})
	}
}

func TestNewNetworkSeverityEscalation(t *testing.T) {
	first := New(TypeNetworkError, "timeout", nil, map[string]interface{}{"attempts": 1})
	assert.Equal(t, SeverityLow, first.Severity)

	repeated := New(TypeNetworkError, "timeout", nil, map[string]interface{}{"attempts": 3})
	assert.Equal(t, SeverityMedium, repeated.Severity)
}

func TestNewSuggestedActions(t *testing.T) {
	t.Run("retry for recoverable", func(t *testing.T) {
		err := New(TypeNetworkError, "timeout", nil, nil)

		require.Len(t, err.Actions, 1)
		assert.Equal(t, "Erneut versuchen", err.Actions[0].Label)
		assert.True(t, err.Actions[0].IsPrimary)
	})

	t.Run("sign-in for permission", func(t *testing.T) {
		err := New(TypePermissionDenied, "forbidden", nil, nil)

		require.Len(t, err.Actions, 1)
		assert.Equal(t, "Anmelden", err.Actions[0].Label)
	})

	t.Run("no retry affordance for non-recoverable", func(t *testing.T) {
		err := New(TypeTemplateNotFound, "gone", nil, nil)

		assert.Empty(t, err.Actions)
	})
}

func TestErrorStringAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := New(TypeNetworkError, "load failed", cause, nil)

	assert.Contains(t, err.Error(), "NETWORK_ERROR")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Same(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestFromErrorMessageMatching(t *testing.T) {
	tests := []struct {
		message string
		want    ErrorType
	}{
		{"failed to fetch resource", TypeNetworkError},
		{"network unreachable", TypeNetworkError},
		{"validation failed for field name", TypeInvalidTemplateData},
		{"permission missing", TypePermissionDenied},
		{"access denied by policy", TypePermissionDenied},
		{"template not found", TypeTemplateNotFound},
		{"something odd happened", TypeUnknownError},
	}

	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			classified := FromError(errors.New(tc.message), nil)

			assert.Equal(t, tc.want, classified.Type)
		})
	}
}

func TestFromErrorStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorType
	}{
		{400, TypeInvalidTemplateData},
		{401, TypePermissionDenied},
		{403, TypePermissionDenied},
		{404, TypeTemplateNotFound},
		{500, TypeServerError},
		{502, TypeNetworkError},
		{503, TypeNetworkError},
		{418, TypeUnknownError},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d", tc.status), func(t *testing.T) {
			classified := FromError(&StatusError{Status: tc.status}, nil)

			assert.Equal(t, tc.want, classified.Type)
		})
	}
}

func TestFromErrorStatusWinsOverMessage(t *testing.T) {
	// The message mentions "network" but the attached status is decisive.
	err := &StatusError{Status: 404, Message: "network lookup said: not here"}

	classified := FromError(err, nil)

	assert.Equal(t, TypeTemplateNotFound, classified.Type)
}

func TestFromErrorTypedPassThrough(t *testing.T) {
	original := New(TypeTemplateSaveFailed, "save failed", nil, nil)

	classified := FromError(fmt.Errorf("wrapped: %w", original), nil)

	assert.Same(t, original, classified)
}

func TestFromErrorNil(t *testing.T) {
	assert.Nil(t, FromError(nil, nil))
}

func TestFromBackendCode(t *testing.T) {
	tests := []struct {
		code string
		want ErrorType
	}{
		{BackendCodeNotFound, TypeTemplateNotFound},
		{BackendCodePermissionDenied, TypePermissionDenied},
		{BackendCodeUniqueViolation, TypeInvalidTemplateData},
		{"disk_on_fire", TypeUnknownError},
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			assert.Equal(t, tc.want, FromBackendCode(tc.code, nil).Type)
		})
	}
}

func TestSanitizeContext(t *testing.T) {
	sanitized := SanitizeContext(map[string]interface{}{
		"password":   "hunter2",
		"apiKey":     "sk-123",
		"token":      "jwt",
		"email":      "max@example.com",
		"templateId": "tpl_1",
	})

	assert.Equal(t, Redacted, sanitized["password"])
	assert.Equal(t, Redacted, sanitized["apiKey"])
	assert.Equal(t, Redacted, sanitized["token"])
	assert.Equal(t, "max@example.com", sanitized["email"])
	assert.Equal(t, "tpl_1", sanitized["templateId"])
}

func TestSanitizeContextNil(t *testing.T) {
	assert.Nil(t, SanitizeContext(nil))
}
