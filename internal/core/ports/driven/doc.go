// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EmbeddingService: Generates vector embeddings for chunks and queries
//   - LLMService: Answer generation and grounding grading
//   - VectorIndex: Stores embeddings and answers top-k similarity queries
//   - DocumentLoader: Reads source files into page-level Documents
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - PromptStore: Overrides the built-in prompt templates
//   - RecordStore: Persists index records so an index can be rebuilt
//     without re-embedding
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or loader package
package driven
