package molt

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort      = "Migrate the datastore between versions"
	MsgVersionShort   = "Print version information"
	MsgCurrentShort   = "Show the installed datastore version"
	MsgCurrentLong    = "Current resolves the datastore's version links and reports the installed version and the directory holding its data. It changes nothing."
	MsgGenConfigShort = "Print the default configuration"
	MsgGenConfigLong  = "GenConfig writes the default configuration as TOML to stdout, with every value commented out, ready to drop into /etc/molt/config.toml."

	// Root output
	MsgNoOpFormat     = "Datastore already at version %s, nothing to do\n"
	MsgPlanHeader     = "Would migrate datastore from %s to %s (%s):\n"
	MsgPlanEmpty      = "  no migrations to run, the version links would be repointed\n"
	MsgPlanItemFormat = "  %d. %s\n"
	MsgDoneFormat     = "Migrated datastore from %s to %s (%d migrations)"

	// Current output
	MsgCurrentVersionFormat = "Version:   %s\n"
	MsgCurrentDirFormat     = "Datastore: %s\n"

	// Flag descriptions
	MsgFlagConfig        = "Config file (default /etc/molt/config.toml)"
	MsgFlagLogLevel      = "Log level: trace, debug, info, warn, error"
	MsgFlagDatastorePath = "Path to the datastore's current link"
	MsgFlagTargetVersion = "Version to migrate the datastore to (accepts a leading v)"
	MsgFlagFromOSRelease = "Take the target version from the os-release file"
	MsgFlagOSRelease     = "os-release file used with --migrate-to-version-from-os-release"
	MsgFlagRootPath      = "Trusted root metadata file for the update repository"
	MsgFlagMetadataDir   = "Directory holding the update repository's signed metadata"
	MsgFlagMigrationDir  = "Directory holding the update repository's migration targets"
	MsgFlagWorkingDir    = "Directory to host the run's scratch workspace"
	MsgFlagDryRun        = "Report the migration plan without running it"
)

// MsgRootLong is the root command help text.
const MsgRootLong = `molt brings the system datastore from its installed version to a
requested target version by running the migrations published in the
signed update repository.

The migration never edits the live datastore: each step writes a fresh
copy, and only after every step has succeeded are the version links
atomically flipped to the result. A failure at any point leaves the
system on the version it started with.`
