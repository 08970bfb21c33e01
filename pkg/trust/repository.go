package trust

// Repository is a source of verified migration artifacts. Implementations
// must only return bytes whose integrity has been checked against the
// repository's signed metadata.
type Repository interface {
	// ReadTarget returns the verified contents of the named target.
	// A target absent from the signed metadata is an ErrTargetNotFound
	// coded error.
	ReadTarget(name string) ([]byte, error)
}
