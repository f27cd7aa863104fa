package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/regpatch/internal/config"
	"github.com/joshuapare/regpatch/internal/layout"
	"github.com/joshuapare/regpatch/internal/logger"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	cfgPath  string
	logLevel string

	// cfg is resolved once per invocation before any command runs.
	cfg = config.Default()

	closeLog = func() error { return nil }

	numbers = message.NewPrinter(language.English)
)

var rootCmd = &cobra.Command{
	Use:   "regpatch [archive]",
	Short: "Patch fixed records in a regulation archive",
	Long: `regpatch rewrites a handful of fixed-size records inside a regulation
archive: a weapon's scaling, a parry ability, a glow effect and an on-screen
counter overlay. It backs the archive up before the first change, writes the
result atomically and re-reads the file to verify every field.

Running regpatch without a subcommand is the same as "regpatch patch".`,
	Version:           version,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPatch(cmd.Context(), args)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "",
		"Config file (default $"+config.EnvPath+" or "+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")

	addPatchFlags(rootCmd)
}

func execute() {
	err := rootCmd.Execute()
	if cerr := shutdownLog(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// shutdownLog closes the log file and stops further logging to it.
func shutdownLog() error {
	err := closeLog()
	closeLog = func() error { return nil }
	logger.Discard()
	return err
}

// setup loads the config file and starts the logger.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Resolve(cfgPath)
	if err != nil {
		return err
	}
	cfg = c

	lvl := cfg.LogLevel
	if logLevel != "" {
		lvl = logLevel
	} else if verbose {
		lvl = "info"
	}
	level, err := logger.ParseLevel(lvl)
	if err != nil {
		return err
	}
	closeLog, err = logger.Init(logger.Options{
		Level: level,
		File:  cfg.LogFile,
		JSON:  cfg.LogFormat == "json",
	})
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	logger.Debug("config resolved", "archive", cfg.ArchivePath, "lock", cfg.Lock)
	return nil
}

// archiveArg returns the archive named on the command line or the configured default.
func archiveArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return cfg.ArchivePath
}

// loadTable returns the layout from an explicit profile path, the configured
// profile, or the built-in table.
func loadTable(profile string) (*layout.Table, error) {
	if profile == "" {
		profile = cfg.LayoutProfile
	}
	if profile == "" {
		return layout.Default(), nil
	}
	printVerbose("Using layout profile: %s\n", profile)
	return layout.LoadProfile(profile)
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// errString is err.Error() or empty for JSON payloads.
func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
