// Package version defines the version numbers molt migrates between and
// the direction of travel. Versions are strict major.minor.patch triples;
// the parser tolerates a leading "v" so link names like v1.2.3 can be fed
// straight in.
package version
