package models

import "time"

// ReviewDecision is a recorded accept/reject outcome. The registry speaks
// lower-case values on the wire, so these constants stay lower-case.
type ReviewDecision string

const (
	ReviewAccepted ReviewDecision = "accepted"
	ReviewRejected ReviewDecision = "rejected"
)

// DocumentStatus is the single human-facing status derived for a document.
// Accepted and rejected are decision values; the rest are synthesized for
// records that lack one.
type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "pending"
	DocumentStatusSubmitted DocumentStatus = "submitted"
	DocumentStatusPartial   DocumentStatus = "partial"
	DocumentStatusAccepted  DocumentStatus = "accepted"
	DocumentStatusRejected  DocumentStatus = "rejected"
)

// Review is a decision record attached to a document or a submission.
// Provisional marks reviews synthesized locally when the registry response
// omitted its echo; the re-sync loop replaces them with the authoritative
// record once the registry returns one.
type Review struct {
	Status      ReviewDecision `json:"status"`
	ReviewedAt  time.Time      `json:"reviewedAt"`
	ReviewedBy  string         `json:"reviewedBy"`
	ReviewNotes string         `json:"reviewNotes,omitempty"`
	Provisional bool           `json:"provisional,omitempty"`
}

// Uploader identifies the tenant behind a submission. TenantID is the only
// join key between a fetched submission and an overlay entry.
type Uploader struct {
	TenantID string `json:"tenantId"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Submission is one tenant's uploaded filled copy of a document.
type Submission struct {
	UploadedBy Uploader  `json:"uploadedBy"`
	FilePath   string    `json:"filePath"`
	UploadedAt time.Time `json:"uploadedAt"`
	Review     *Review   `json:"review,omitempty"`
}

// Document represents one fillable-form distribution event owned by the
// upstream document registry. SendToAll selects broadcast mode (one shared
// outcome) over per-tenant mode (independent outcomes per recipient); a
// document never changes mode for its lifetime.
type Document struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	SendToAll   bool         `json:"sendToAll"`
	Tenants     []string     `json:"tenants,omitempty"`
	FilledFiles []Submission `json:"filledFiles,omitempty"`
	Status      string       `json:"status,omitempty"`
	Review      *Review      `json:"review,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	CreatedBy   string       `json:"createdBy,omitempty"`
}

// OverlayFilledFile pairs a tenant with the locally recorded decision for
// that tenant's submission.
type OverlayFilledFile struct {
	TenantID string  `json:"tenantId"`
	Review   *Review `json:"review,omitempty"`
}

// OverlayEntry is the locally persisted decision record for one document,
// keyed by document id. SendToAll mirrors the document's mode at decision
// time so the entry can be read back without re-fetching the document.
type OverlayEntry struct {
	SendToAll   bool                `json:"sendToAll"`
	Review      *Review             `json:"review,omitempty"`
	FilledFiles []OverlayFilledFile `json:"filledFiles,omitempty"`
}

// TenantReview returns the recorded review for the given tenant, or nil.
func (e *OverlayEntry) TenantReview(tenantID string) *Review {
	for i := range e.FilledFiles {
		if e.FilledFiles[i].TenantID == tenantID {
			return e.FilledFiles[i].Review
		}
	}
	return nil
}
