package domain

import (
	"strings"
	"time"
)

// APIHandle identifies one API in the management service.
// It carries the metadata needed for provenance annotation.
type APIHandle struct {
	// ID is the API's resource name in the management service.
	ID string

	// DisplayName is the human-readable name.
	DisplayName string

	// Description is the API description, if one is set.
	Description string

	// ServiceURL is the backend service URL, if one is set.
	ServiceURL string

	// Tags are the tag names assigned to the API.
	Tags []string
}

// Name returns the display name, falling back to the ID.
func (a APIHandle) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.ID
}

// APIFilter restricts which APIs are exported.
// An empty filter matches all APIs.
type APIFilter struct {
	// IncludeAPIs is an allow-list of API display names (or IDs).
	IncludeAPIs []string

	// IncludeTags is an allow-list of tag names.
	IncludeTags []string
}

// IsEmpty returns true when the filter matches everything.
func (f APIFilter) IsEmpty() bool {
	return len(f.IncludeAPIs) == 0 && len(f.IncludeTags) == 0
}

// Matches reports whether an API passes the filter.
// Name matching is case-insensitive against display name and ID;
// tag matching is case-insensitive against any assigned tag.
// When both lists are set, either match admits the API.
func (f APIFilter) Matches(api APIHandle) bool {
	if f.IsEmpty() {
		return true
	}

	for _, name := range f.IncludeAPIs {
		if strings.EqualFold(name, api.DisplayName) || strings.EqualFold(name, api.ID) {
			return true
		}
	}

	for _, want := range f.IncludeTags {
		for _, tag := range api.Tags {
			if strings.EqualFold(want, tag) {
				return true
			}
		}
	}

	return false
}

// Provenance is the metadata injected into an exported specification's
// info block before it is written to disk.
type Provenance struct {
	APIID        string
	APIName      string
	DownloadedAt time.Time
	ServiceURL   string
	Description  string
}

// SanitizeFileName reduces a display name to a safe filename fragment.
// Alphanumerics, '-' and '_' are kept; everything else becomes '_'.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// SpecFileName derives the output filename for an exported API.
// The API ID suffix keeps filenames unique when display names collide.
func SpecFileName(api APIHandle) string {
	return SanitizeFileName(api.Name()) + "_" + api.ID + ".json"
}

// APIExtract is the structured summary produced by the language model
// for one specification.
type APIExtract struct {
	APIName        string             `json:"apiName"`
	APIPurpose     string             `json:"apiPurpose"`
	APIDescription string             `json:"apiDescription"`
	APIContext     string             `json:"apiContext"`
	Operations     []ExtractOperation `json:"operations"`
}

// ExtractOperation is one operation summary within an APIExtract.
type ExtractOperation struct {
	OperationName        string `json:"operationName"`
	OperationDescription string `json:"operationDescription"`
}
