// Package domain contains the core business entities for the API
// documentation pipeline: exported specifications, rendered documents,
// fused wiki bundles, and the search documents published to the index.
package domain
