// Package processing owns the exchange with the external workflow engine:
// dispatching newly uploaded documents to its webhook and ingesting the
// corrected content it pushes back.
package processing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"docproc-backend/internal/documents"
	"docproc-backend/internal/shared/metrics"
	"docproc-backend/internal/shared/telemetry"
)

// Dispatcher sends upload notifications to the processing webhook and
// records the resulting document status. Transport failures are retried with
// exponential backoff up to MaxAttempts; a non-2xx response is terminal.
type Dispatcher struct {
	Repo          documents.Repo
	Client        *http.Client
	WebhookURL    string
	PublicBaseURL string
	Timeout       time.Duration
	MaxAttempts   int
}

type dispatchPayload struct {
	DocID         string `json:"doc_id"`
	Filename      string `json:"filename"`
	FileURL       string `json:"file_url"`
	OriginalPath  string `json:"original_path"`
	CallbackToken string `json:"callback_token"`
}

// statusError marks a webhook response outside the 2xx range. It is never
// retried.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("webhook returned status %d", e.code)
}

// Dispatch notifies the webhook about a new document. It is meant to run in
// its own goroutine after the upload response has been sent; it never
// returns an error to the caller and never lets a panic escape.
func (d *Dispatcher) Dispatch(ctx context.Context, doc documents.Document) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("dispatch.panic", map[string]any{
				"documentId": doc.ID,
				"requestId":  documents.RequestIDFromContext(ctx),
				"panic":      fmt.Sprint(r),
			})
			metrics.IncDispatchFailed()
			d.setStatus(doc.ID, documents.StatusError, "internal fault during dispatch")
		}
	}()

	metrics.IncDispatchStarted()
	start := time.Now()

	if d.WebhookURL == "" {
		telemetry.Error("dispatch.unconfigured", map[string]any{
			"documentId": doc.ID,
		})
		metrics.IncDispatchFailed()
		d.setStatus(doc.ID, documents.StatusConnectionFailed, "webhook url not configured")
		return
	}

	body, err := json.Marshal(dispatchPayload{
		DocID:         doc.ID,
		Filename:      doc.Filename,
		FileURL:       d.fileURL(doc.StorageKey),
		OriginalPath:  "uploads/" + doc.StorageKey,
		CallbackToken: doc.CallbackToken,
	})
	if err != nil {
		metrics.IncDispatchFailed()
		d.setStatus(doc.ID, documents.StatusError, "failed to encode payload")
		return
	}

	attempts := d.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(attempts-1)),
		ctx,
	)

	err = backoff.Retry(func() error {
		return d.post(ctx, body)
	}, policy)

	metrics.ObserveDispatchDurationMs(float64(time.Since(start).Milliseconds()))

	if err == nil {
		metrics.IncDispatchSucceeded()
		telemetry.Info("dispatch.succeeded", map[string]any{
			"documentId": doc.ID,
			"requestId":  documents.RequestIDFromContext(ctx),
		})
		d.setStatus(doc.ID, documents.StatusDispatched, "")
		return
	}

	metrics.IncDispatchFailed()
	var se *statusError
	if errors.As(err, &se) {
		telemetry.Error("dispatch.rejected", map[string]any{
			"documentId": doc.ID,
			"requestId":  documents.RequestIDFromContext(ctx),
			"status":     se.code,
		})
		d.setStatus(doc.ID, documents.StatusDispatchError, strconv.Itoa(se.code))
		return
	}

	telemetry.Error("dispatch.unreachable", map[string]any{
		"documentId": doc.ID,
		"requestId":  documents.RequestIDFromContext(ctx),
		"error":      err.Error(),
	})
	d.setStatus(doc.ID, documents.StatusConnectionFailed, truncate(err.Error(), 200))
}

// post performs one webhook attempt with the per-attempt timeout.
func (d *Dispatcher) post(ctx context.Context, body []byte) error {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, d.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return backoff.Permanent(&statusError{code: resp.StatusCode})
	}
	return nil
}

func (d *Dispatcher) fileURL(storageKey string) string {
	base := strings.TrimSuffix(d.PublicBaseURL, "/")
	return base + "/uploads/" + storageKey
}

// setStatus records a transition using a fresh context so a cancelled
// request context cannot lose the terminal state.
func (d *Dispatcher) setStatus(docID, status, detail string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.Repo.SetStatus(ctx, docID, status, detail); err != nil {
		telemetry.Error("dispatch.status_update_failed", map[string]any{
			"documentId": docID,
			"status":     status,
			"error":      err.Error(),
		})
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
