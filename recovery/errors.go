// Package recovery turns heterogeneous failures (wrapped errors, HTTP-like
// status codes, storage-layer error codes) into a typed taxonomy with
// recoverability, severity and user-facing copy, and provides composable
// strategies (safe fallback, retry with backoff, per-key circuit breaker,
// graceful degradation) for operations that call out to the persistence
// layer.
package recovery

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorType classifies a failure.
type ErrorType string

const (
	TypeTemplateNotFound    ErrorType = "TEMPLATE_NOT_FOUND"
	TypeTemplateLoadFailed  ErrorType = "TEMPLATE_LOAD_FAILED"
	TypeTemplateSaveFailed  ErrorType = "TEMPLATE_SAVE_FAILED"
	TypeInvalidTemplateData ErrorType = "INVALID_TEMPLATE_DATA"
	TypePermissionDenied    ErrorType = "PERMISSION_DENIED"
	TypeNetworkError        ErrorType = "NETWORK_ERROR"
	TypeServerError         ErrorType = "SERVER_ERROR"
	TypeUnknownError        ErrorType = "UNKNOWN_ERROR"
)

// Severity grades how prominently a failure should surface.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Action is a suggested user reaction to a failure.
type Action struct {
	Label     string `json:"label"`
	IsPrimary bool   `json:"isPrimary"`
}

// Error is a classified failure. It is created once and never mutated.
type Error struct {
	Type        ErrorType              `json:"type"`
	Message     string                 `json:"message"`
	UserMessage string                 `json:"userMessage"`
	Cause       error                  `json:"-"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Recoverable bool                   `json:"recoverable"`
	Severity    Severity               `json:"severity"`
	Actions     []Action               `json:"actions,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds a typed error. Recoverability and severity are deterministic per
// type; network severity escalates from low to medium once the context
// records repeated attempts. The context is sanitized on the way in.
func New(errType ErrorType, message string, cause error, context map[string]interface{}) *Error {
	sanitized := SanitizeContext(context)
	return &Error{
		Type:        errType,
		Message:     message,
		UserMessage: userMessageFor(errType),
		Cause:       cause,
		Context:     sanitized,
		Recoverable: recoverableFor(errType),
		Severity:    severityFor(errType, sanitized),
		Actions:     actionsFor(errType),
		Timestamp:   time.Now(),
	}
}

func recoverableFor(errType ErrorType) bool {
	switch errType {
	case TypeTemplateLoadFailed, TypeTemplateSaveFailed, TypeNetworkError, TypeServerError:
		return true
	default:
		return false
	}
}

func severityFor(errType ErrorType, context map[string]interface{}) Severity {
	switch errType {
	case TypePermissionDenied, TypeServerError:
		return SeverityHigh
	case TypeNetworkError:
		if attemptCount(context) >= 2 {
			return SeverityMedium
		}
		return SeverityLow
	default:
		return SeverityMedium
	}
}

func attemptCount(context map[string]interface{}) int {
	switch attempts := context["attempts"].(type) {
	case int:
		return attempts
	case float64:
		return int(attempts)
	default:
		return 0
	}
}

func userMessageFor(errType ErrorType) string {
	switch errType {
	case TypeTemplateNotFound:
		return "Die Vorlage wurde nicht gefunden."
	case TypeTemplateLoadFailed:
		return "Die Vorlage konnte nicht geladen werden."
	case TypeTemplateSaveFailed:
		return "Die Vorlage konnte nicht gespeichert werden."
	case TypeInvalidTemplateData:
		return "Die Vorlagendaten sind ungültig."
	case TypePermissionDenied:
		return "Sie haben keine Berechtigung für diese Aktion."
	case TypeNetworkError:
		return "Netzwerkfehler. Bitte überprüfen Sie Ihre Verbindung."
	case TypeServerError:
		return "Ein Serverfehler ist aufgetreten. Bitte versuchen Sie es später erneut."
	default:
		return "Ein unerwarteter Fehler ist aufgetreten."
	}
}

func actionsFor(errType ErrorType) []Action {
	switch {
	case errType == TypePermissionDenied:
		return []Action{{Label: "Anmelden", IsPrimary: true}}
	case recoverableFor(errType):
		return []Action{{Label: "Erneut versuchen", IsPrimary: true}}
	default:
		return nil
	}
}

// FromError classifies an arbitrary error. A typed *Error passes through
// unchanged; otherwise an attached status code wins over message matching.
func FromError(err error, context map[string]interface{}) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	if errType, ok := typeFromStatus(err); ok {
		return New(errType, err.Error(), err, context)
	}

	return New(typeFromMessage(err.Error()), err.Error(), err, context)
}

// StatusError carries an HTTP-like status code alongside a message.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("status %d", e.Status)
}

// StatusCode returns the HTTP-like status.
func (e *StatusError) StatusCode() int {
	return e.Status
}

func typeFromStatus(err error) (ErrorType, bool) {
	var coder interface{ StatusCode() int }
	if !errors.As(err, &coder) {
		return "", false
	}

	switch coder.StatusCode() {
	case 400:
		return TypeInvalidTemplateData, true
	case 401, 403:
		return TypePermissionDenied, true
	case 404:
		return TypeTemplateNotFound, true
	case 500:
		return TypeServerError, true
	case 502, 503:
		return TypeNetworkError, true
	default:
		return TypeUnknownError, true
	}
}

func typeFromMessage(message string) ErrorType {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "fetch"), strings.Contains(lower, "network"):
		return TypeNetworkError
	case strings.Contains(lower, "validation"):
		return TypeInvalidTemplateData
	case strings.Contains(lower, "permission"), strings.Contains(lower, "denied"):
		return TypePermissionDenied
	case strings.Contains(lower, "not found"):
		return TypeTemplateNotFound
	default:
		return TypeUnknownError
	}
}

// Storage-layer error codes surfaced by the persistence collaborator.
const (
	BackendCodeNotFound         = "not_found"
	BackendCodePermissionDenied = "permission_denied"
	BackendCodeUniqueViolation  = "unique_violation"
)

// FromBackendCode maps a storage-layer error code to the taxonomy.
func FromBackendCode(code string, context map[string]interface{}) *Error {
	switch code {
	case BackendCodeNotFound:
		return New(TypeTemplateNotFound, "template record not found", nil, context)
	case BackendCodePermissionDenied:
		return New(TypePermissionDenied, "storage layer denied access", nil, context)
	case BackendCodeUniqueViolation:
		return New(TypeInvalidTemplateData, "template violates a uniqueness constraint", nil, context)
	default:
		return New(TypeUnknownError, fmt.Sprintf("unknown storage error code %q", code), nil, context)
	}
}

// sensitiveKeys are redacted by SanitizeContext. Everything else, including
// email addresses, passes through unchanged.
var sensitiveKeys = map[string]bool{
	"password":      true,
	"apikey":        true,
	"api_key":       true,
	"token":         true,
	"secret":        true,
	"authorization": true,
}

// Redacted replaces sensitive context values.
const Redacted = "[REDACTED]"

// SanitizeContext returns a copy of context with sensitive values redacted.
func SanitizeContext(context map[string]interface{}) map[string]interface{} {
	if context == nil {
		return nil
	}
	sanitized := make(map[string]interface{}, len(context))
	for key, value := range context {
		if sensitiveKeys[strings.ToLower(key)] {
			sanitized[key] = Redacted
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}
