// Package trust loads the signed migration repository and hands out
// verified target bytes. Everything molt executes during a migration
// comes through here; a target that fails signature or hash checks is
// never returned.
package trust
