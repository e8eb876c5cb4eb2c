// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EmbeddingService: turns text into vectors (remote HTTP provider)
//   - VectorStore: stores embeddings and answers top-K similarity queries
//   - LLMService: streams chat completions
//   - DocumentStore: persists document records and their lifecycle status
//   - SessionVerifier: validates session tokens into user identifiers
//   - TextExtractor: turns raw upload bytes into plain text
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: any adapter package
package driven
