package documents

import (
	"time"

	"docproc-backend/internal/tags"
)

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID            string     `json:"id"`
	UploadDate    time.Time  `json:"upload_date"`
	OriginalPath  string     `json:"original_path"`
	Filename      string     `json:"filename"`
	RawText       string     `json:"raw_text"`
	CorrectedHTML string     `json:"corrected_html"`
	Status        string     `json:"status"`
	StatusDetail  string     `json:"status_detail,omitempty"`
	Tags          []tags.Tag `json:"tags"`
}

func toResponse(doc Document, tagList []tags.Tag) DocumentResponse {
	if tagList == nil {
		tagList = []tags.Tag{}
	}
	return DocumentResponse{
		ID:            doc.ID,
		UploadDate:    doc.UploadDate,
		OriginalPath:  "uploads/" + doc.StorageKey,
		Filename:      doc.Filename,
		RawText:       doc.RawText,
		CorrectedHTML: doc.CorrectedHTML,
		Status:        doc.Status,
		StatusDetail:  doc.StatusDetail,
		Tags:          tagList,
	}
}
