// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/paydesk/buildvars"
	"github.com/toeirei/paydesk/config"
	"github.com/toeirei/paydesk/internal/clock"
	"github.com/toeirei/paydesk/internal/core"
	"github.com/toeirei/paydesk/internal/db"
	"github.com/toeirei/paydesk/internal/i18n"
	"github.com/toeirei/paydesk/internal/logging"
)

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

var (
	appConfig config.Config
	engine    *core.Engine
)

// setupDefaultServices loads the configuration, selects the language and
// opens the database unless a store was already installed (tests do that).
func setupDefaultServices(cmd *cobra.Command, args []string) error {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logging.SetDebug(true)
	}

	explicit, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	defaults := config.Defaults()
	appConfig, err = config.LoadConfig[config.Config](cmd, defaults, explicit)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	// Empty values in a config file fall back to the defaults.
	if appConfig.Database.Type == "" {
		appConfig.Database.Type = defaults["database.type"].(string)
	}
	if appConfig.Database.Dsn == "" {
		appConfig.Database.Dsn = defaults["database.dsn"].(string)
	}
	if appConfig.Language == "" {
		appConfig.Language = defaults["language"].(string)
	}

	i18n.Init(appConfig.Language)

	loc, err := appConfig.Location()
	if err != nil {
		return err
	}

	if !db.IsInitialized() {
		if _, err := db.New(appConfig.Database.Type, appConfig.Database.Dsn); err != nil {
			return errors.New(i18n.T("config.error_init_db", err))
		}
	}

	actor := appConfig.Operator
	if actor == "" {
		actor = "cli"
	}
	engine = core.NewEngine(db.Default(),
		core.WithClock(clock.System{Loc: loc}),
		core.WithActor(actor),
		core.WithLogger(logging.With("component", "engine")),
	)
	return nil
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// Execute runs the CLI entrypoint. main should call this and handle the
// process exit.
func Execute() error {
	defer func() {
		if s := db.Default(); s != nil {
			_ = s.Close()
		}
	}()
	if err := NewRootCmd().Execute(); err != nil {
		return errors.New(describeError(err))
	}
	return nil
}

// NewRootCmd builds a fresh command tree. Tests create one per run.
func NewRootCmd() *cobra.Command {
	v, c, d := resolveBuildVersion(nil)
	compositeVersion := v
	if c != "" && c != "dev" {
		compositeVersion = compositeVersion + " (" + c + ")"
	}
	if d != "" {
		compositeVersion = compositeVersion + " built: " + d
	}

	cmd := &cobra.Command{
		Use:   "paydesk",
		Short: "Paydesk assigns incoming payments to recipient accounts.",
		Long: `Paydesk keeps a prioritised list of recipient accounts, each with a
monthly (recurring) or single (one-time) limit, and tells operators which
account should receive the next payment. Every recorded payment is checked
against the recipient's remaining capacity.`,
		Version:           compositeVersion,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupDefaultServices,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output (debug logs)")
	cmd.PersistentFlags().String("config", "", "config file")
	cmd.PersistentFlags().String("language", "en", `Output language ("en", "es")`)
	cmd.PersistentFlags().String("database.type", "sqlite", "Database type (sqlite, postgres, mysql)")
	cmd.PersistentFlags().String("database.dsn", "./paydesk.db", "Database connection string (DSN)")
	cmd.PersistentFlags().String("timezone", "Local", "IANA time zone that defines month boundaries")
	cmd.PersistentFlags().String("operator", "", "Default operator username")

	cmd.AddCommand(
		newRecipientCmd(),
		newBankCmd(),
		newOperatorCmd(),
		newSuggestCmd(),
		newValidateCmd(),
		newPayCmd(),
		newAmendCmd(),
		newPaymentsCmd(),
		newSummaryCmd(),
		newTotalsCmd(),
		newBalanceCmd(),
		newProbeCmd(),
		newRolloverCmd(),
		newAuditCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newDBCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		// Printing the version needs neither config nor database.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version: %s\n", v)
			fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If info is nil, it reads build info from
// the runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault(version)
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}
	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		if resolvedVersion == "dev" || resolvedVersion == "(devel)" {
			for _, dep := range info.Deps {
				if dep != nil && dep.Path == "github.com/toeirei/paydesk" && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}

// newConfigCmd groups configuration helpers.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or persist the effective configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "database.type: %s\n", appConfig.Database.Type)
			fmt.Fprintf(out, "database.dsn: %s\n", redactDSN(appConfig.Database.Dsn))
			fmt.Fprintf(out, "language: %s\n", appConfig.Language)
			fmt.Fprintf(out, "timezone: %s\n", appConfig.Timezone)
			fmt.Fprintf(out, "operator: %s\n", appConfig.Operator)
			if used := config.ConfigFileUsed(); used != "" {
				fmt.Fprintf(out, "file: %s\n", used)
			}
			return nil
		},
	})
	writeCmd := &cobra.Command{
		Use:   "write",
		Short: "Write the effective configuration to the user (or system) config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			system, _ := cmd.Flags().GetBool("system")
			path, err := config.WriteConfigFile(&appConfig, system)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("config.written", path))
			return nil
		},
	}
	writeCmd.Flags().Bool("system", false, "Write the system-wide file instead of the user file")
	cmd.AddCommand(writeCmd)
	return cmd
}

// redactDSN hides a password embedded in a DSN.
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	head := dsn[:at]
	colon := strings.LastIndex(head, ":")
	if colon < 0 || strings.HasPrefix(head[colon:], "://") {
		return dsn
	}
	return head[:colon+1] + "****" + dsn[at:]
}
