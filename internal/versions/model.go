// Package versions keeps point-in-time snapshots of document content so a
// user edit never destroys the previous revision.
package versions

import "time"

type DocumentVersion struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	VersionNumber int       `json:"version_number"`
	CorrectedHTML string    `json:"corrected_html"`
	CreatedAt     time.Time `json:"created_at"`
}
