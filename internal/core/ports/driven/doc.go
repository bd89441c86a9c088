// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the engine to function:
//
//   - DocumentStore: document and chunk persistence with quota enforcement
//   - ChatStore: append-only chat history persistence
//   - UsageStore: append-only usage record persistence
//   - PricingTable: unit prices for billable operations
//
// # Optional Interfaces
//
// These can be nil - the engine degrades gracefully:
//
//   - EmbeddingService: generates vectors. Without it, semantic and hybrid
//     search degrade to keyword-only.
//   - GenerationService: produces answers. Without it, question answering
//     is disabled while search remains available.
//   - DocumentSource: pushes documents in for ingestion (e.g. a watched
//     directory). Ingestion can also be driven directly.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: any adapter package
package driven
