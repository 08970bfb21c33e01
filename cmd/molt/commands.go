package molt

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	build "github.com/arthur-debert/molt/internal/version"
	"github.com/arthur-debert/molt/pkg/commands/current"
	"github.com/arthur-debert/molt/pkg/commands/migrate"
	"github.com/arthur-debert/molt/pkg/config"
	"github.com/arthur-debert/molt/pkg/logging"
	"github.com/arthur-debert/molt/pkg/style"
	"github.com/arthur-debert/molt/pkg/version"
)

// rootOptions carries flag values and the loaded configuration across
// the command tree.
type rootOptions struct {
	configPath string
	logLevel   string

	targetVersion string
	fromOSRelease bool
	dryRun        bool

	cfg *config.Config
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	def := config.Default()

	rootCmd := &cobra.Command{
		Use:     "molt",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: build.Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg

			level := opts.logLevel
			if level == "" {
				level = cfg.LogLevel
			}
			if err := logging.SetupLogger(level); err != nil {
				return err
			}
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, opts)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", MsgFlagLogLevel)

	// Migration flags. Path flags default to the built-in config so
	// help output shows where molt will look; values set in the config
	// file or environment win over these defaults, flags win over all.
	rootCmd.Flags().String("datastore-path", def.DatastorePath, MsgFlagDatastorePath)
	rootCmd.Flags().StringVar(&opts.targetVersion, "migrate-to-version", "", MsgFlagTargetVersion)
	rootCmd.Flags().BoolVar(&opts.fromOSRelease, "migrate-to-version-from-os-release", false, MsgFlagFromOSRelease)
	rootCmd.Flags().String("os-release", def.OSRelease, MsgFlagOSRelease)
	rootCmd.Flags().String("root-path", def.RootPath, MsgFlagRootPath)
	rootCmd.Flags().String("metadata-directory", def.MetadataDirectory, MsgFlagMetadataDir)
	rootCmd.Flags().String("migration-directory", def.MigrationDirectory, MsgFlagMigrationDir)
	rootCmd.Flags().String("working-directory", def.WorkingDirectory, MsgFlagWorkingDir)
	rootCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)

	rootCmd.MarkFlagsOneRequired("migrate-to-version", "migrate-to-version-from-os-release")
	rootCmd.MarkFlagsMutuallyExclusive("migrate-to-version", "migrate-to-version-from-os-release")

	rootCmd.AddCommand(newCurrentCmd(opts))
	rootCmd.AddCommand(newGenConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// setting resolves one path setting: the flag when given on the
// command line, the layered config value otherwise.
func setting(cmd *cobra.Command, name, fromConfig string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fromConfig
}

// targetVersion resolves the requested version from whichever of the
// two mutually exclusive flags was given.
func targetVersion(cmd *cobra.Command, opts *rootOptions) (version.Number, error) {
	if opts.fromOSRelease {
		return config.OSReleaseVersion(setting(cmd, "os-release", opts.cfg.OSRelease))
	}
	return version.Parse(opts.targetVersion)
}

func runMigrate(cmd *cobra.Command, opts *rootOptions) error {
	target, err := targetVersion(cmd, opts)
	if err != nil {
		return err
	}

	cfg := opts.cfg
	result, err := migrate.Migrate(migrate.Options{
		DatastorePath: setting(cmd, "datastore-path", cfg.DatastorePath),
		TargetVersion: target,
		RootPath:      setting(cmd, "root-path", cfg.RootPath),
		MetadataDir:   setting(cmd, "metadata-directory", cfg.MetadataDirectory),
		MigrationDir:  setting(cmd, "migration-directory", cfg.MigrationDirectory),
		WorkingDir:    setting(cmd, "working-directory", cfg.WorkingDirectory),
		DryRun:        opts.dryRun,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case result.NoOp:
		fmt.Fprintf(out, MsgNoOpFormat, result.To)
	case opts.dryRun:
		fmt.Fprintf(out, MsgPlanHeader, result.From, result.To, result.Direction)
		if len(result.Migrations) == 0 {
			fmt.Fprint(out, style.MutedStyle.Render(MsgPlanEmpty))
		}
		for i, name := range result.Migrations {
			fmt.Fprintf(out, MsgPlanItemFormat, i+1, name)
		}
	default:
		done := fmt.Sprintf(MsgDoneFormat, result.From, result.To, len(result.Migrations))
		fmt.Fprintln(out, style.SuccessStyle.Render(done))
	}
	return nil
}

func newCurrentCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "current",
		Short: MsgCurrentShort,
		Long:  MsgCurrentLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := current.Current(current.Options{
				DatastorePath: setting(cmd, "datastore-path", opts.cfg.DatastorePath),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgCurrentVersionFormat, result.Version)
			fmt.Fprintf(cmd.OutOrStdout(), MsgCurrentDirFormat, result.Dir)
			return nil
		},
	}
	cmd.Flags().String("datastore-path", config.Default().DatastorePath, MsgFlagDatastorePath)
	return cmd
}

func newGenConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genconfig",
		Short: MsgGenConfigShort,
		Long:  MsgGenConfigLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := config.GenerateConfigContent()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "molt version %s\n", build.Version)
			fmt.Fprintf(out, "  commit: %s\n", build.Commit)
			fmt.Fprintf(out, "  built:  %s\n", build.Date)
		},
	}
}
