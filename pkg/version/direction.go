package version

// Direction is the direction of travel between two datastore versions.
type Direction int

const (
	// None means source and target are the same version.
	None Direction = iota
	// Forward moves to a newer version.
	Forward
	// Backward moves to an older version.
	Backward
)

// DirectionOf compares from and to and returns the direction of travel.
func DirectionOf(from, to Number) Direction {
	switch from.Compare(to) {
	case -1:
		return Forward
	case 1:
		return Backward
	default:
		return None
	}
}

// String returns the lowercase name of the direction.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "none"
	}
}

// Flag returns the command line flag passed to migration binaries.
// It is the empty string for None.
func (d Direction) Flag() string {
	switch d {
	case Forward:
		return "--forward"
	case Backward:
		return "--backward"
	default:
		return ""
	}
}
