// Package testutil provides utilities for testing molt components.
//
// Key components:
//   - FakeRepository: in-memory trusted repository with canned targets
//   - MakeSignedRepo: real ed25519-signed repository on disk
//   - MakeDatastore: builds the symlink chain for a version on disk
//   - MigrationScript / CompressLZ4: fabricate runnable migration targets
//
// Usage guidelines:
//   - Datastore fixtures live in t.TempDir; tests touch the real filesystem
//   - All test data should be defined inline, not in external files
//   - Each test should be completely isolated with no shared state
package testutil
