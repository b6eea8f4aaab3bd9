// Package driven defines the interfaces that core calls OUT to
// infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - APIManagementClient: lists and exports API specifications
//   - SearchEngine: manages the search index and uploads documents
//
// # Optional Interfaces
//
//   - LLMService: structured extraction from specifications
//   - EmbeddingService: client-side content vectors
//   - RunStore: persisted run manifests
package driven
