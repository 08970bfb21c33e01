// Package manifest reads the published migration manifest and selects
// the migrations that carry a datastore from one version to another.
// The manifest is a JSON document whose keys are version pairs like
// "(0.99.0, 0.99.1)" and whose values are ordered migration names.
package manifest
