// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - ResourceResolver: Looks up CMS resources by path
//   - ContentBuilderPlugin: Contributes fields to a delivery document
//   - TransportPlugin: Delivers a document to a commerce backend
//   - AttributeConverter: Maps one CMS property to a JSON value
//   - ArtifactPackager: Turns a serialised document into replication content
//   - ReplicationLog: Per-action log sink
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - Renderer: Without it, body and template plugins render nothing.
//   - LiveRelationships: Without it, content assets are named after the page.
//   - AccessTokenProvider: Without it, OCAPI calls are sent unauthenticated.
//   - HistoryStore: Without it, replication runs are not recorded.
//   - MetricsSink: Without it, no metrics are emitted.
package driven
