// Package migration executes the migration binaries that carry a
// datastore from one version to another. Binaries come out of the
// trusted repository LZ4-compressed, are decoded into a private run
// directory, and are chained source to target one datastore directory
// at a time. The link chain is never touched here; a failed migration
// leaves the live store exactly as it was.
package migration
