// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - LanguageModel: Segmentation, summarisation, merge naming, revision
//   - Renderer / RendererRegistry: Note body to markdown/latex/html
//   - DocumentStore: Document, topic, and edge persistence
//   - NoteStore: Note persistence
//   - ChatStore: Revision chat log persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the engine degrades gracefully:
//
//   - Enricher: Supplementary material for thin topics. Without it, notes
//     come from primary content only.
//   - ImageAnalyzer: Image descriptions. Without it, images are attached
//     undescribed.
//   - Extractor: Only needed by ingestion surfaces, not the engine itself.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or renderer package
package driven
