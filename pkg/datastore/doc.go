// Package datastore manages the on-disk version chain of the system
// data store. It abstracts away the physical layout of the datastore
// directory, providing a clean API for resolving the live version,
// reserving directories for new versions, and atomically flipping the
// chain to a migrated store.
package datastore
