// Package domain defines the core replication entities.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Delivery: The normalised document threaded through the builder chain
//   - ReplicationAction: One activate/deactivate/delete of a resource
//   - AttributeDescriptor: A CMS property to JSON field mapping
//   - InstanceConfig: One configured commerce backend
//   - Artifact: The serialised delivery handed to the transport side
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
