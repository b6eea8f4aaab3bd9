package domain

import (
	"crypto/md5" //nolint:gosec // Content fingerprint, not a security boundary.
	"encoding/hex"
)

// Document type values stored in the index.
const (
	DocumentTypeAPI  = "API Documentation"
	DocumentTypeWiki = "Wiki"
)

// SearchDocument is the unit stored in the search index.
// Field names match the index schema.
type SearchDocument struct {
	// ID is an MD5 fingerprint of the document content.
	// Identical content from different sources collides; changed
	// content under the same name creates a new entry rather than
	// an update.
	ID string `json:"id"`

	// Title is the human-readable document title.
	Title string `json:"title"`

	// Content is the full searchable text.
	Content string `json:"content"`

	// APIName is the API or service name.
	APIName string `json:"apiName"`

	// APIVersion is the version string, when one could be derived.
	APIVersion string `json:"apiVersion,omitempty"`

	// DocumentType is DocumentTypeAPI or DocumentTypeWiki.
	DocumentType string `json:"documentType"`

	// LastUpdated is an RFC 3339 timestamp.
	LastUpdated string `json:"lastUpdated"`

	// FileName is the source file basename, when the document came
	// from a file.
	FileName string `json:"fileName,omitempty"`

	// DocumentURL points back at the source document.
	DocumentURL string `json:"documentUrl,omitempty"`

	// ContentVector is the optional embedding for the content field.
	ContentVector []float32 `json:"apiContentVector,omitempty"`
}

// ContentID fingerprints document content for use as an index key.
func ContentID(content []byte) string {
	sum := md5.Sum(content) //nolint:gosec // See SearchDocument.ID.
	return hex.EncodeToString(sum[:])
}

// WikiDocumentID derives the index key for a fused wiki bundle.
// Keyed by service name so re-runs overwrite the same entry.
func WikiDocumentID(serviceName string) string {
	return "wiki-" + ContentID([]byte(serviceName))
}
