// Package app assembles the replicator from its configuration.
//
// A Runtime owns the long-lived collaborators (stores, metrics, the
// content tree) and the registries the pipeline reads from. Apply rebuilds
// the configuration-driven parts (instances, token providers, builder and
// transport plugins) and swaps each registry atomically, so a replication
// in flight always sees one consistent snapshot per registry.
package app
