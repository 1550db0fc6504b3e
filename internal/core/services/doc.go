// Package services implements the driving port interfaces.
// Services contain the replication pipeline logic and orchestrate
// calls to driven ports (adapters).
//
// Registries are read by concurrent replications and mutated by
// configuration reloads; every mutation publishes a new immutable
// snapshot so readers never observe a half-built registry.
package services
