package documents

import "time"

// Lifecycle statuses. Stored as a closed set; diagnostic detail such as an
// upstream HTTP code lives in StatusDetail, not in the status itself.
const (
	StatusProcessing       = "Processing"
	StatusDispatched       = "Sending to N8N..."
	StatusDispatchError    = "N8N Error"
	StatusConnectionFailed = "N8N Connection Failed"
	StatusReady            = "Ready"
	StatusError            = "Error"
)

// KnownStatus reports whether s is a valid lifecycle status.
func KnownStatus(s string) bool {
	switch s {
	case StatusProcessing, StatusDispatched, StatusDispatchError,
		StatusConnectionFailed, StatusReady, StatusError:
		return true
	}
	return false
}

// Document represents an uploaded document owned by a user.
type Document struct {
	ID            string
	UserID        string
	UploadDate    time.Time
	StorageKey    string
	Filename      string
	RawText       string
	CorrectedHTML string
	Status        string
	StatusDetail  string

	// Single-use correlation token required on the processing callback.
	CallbackToken          string
	CallbackTokenExpiresAt time.Time
}

// CallbackTokenValid reports whether the supplied token matches the
// document's live correlation token.
func (d Document) CallbackTokenValid(token string, now time.Time) bool {
	if d.CallbackToken == "" || token == "" {
		return false
	}
	if d.CallbackToken != token {
		return false
	}
	return now.Before(d.CallbackTokenExpiresAt)
}
