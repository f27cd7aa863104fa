package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regpatch/internal/format"
	"github.com/joshuapare/regpatch/internal/logger"
	"github.com/joshuapare/regpatch/internal/patcher"
)

var (
	patchDryRun       bool
	patchNoVerify     bool
	patchAll          bool
	patchLayout       string
	patchBackupSuffix string
)

var patchCmd = &cobra.Command{
	Use:   "patch [archive]",
	Short: "Back up, patch and verify an archive",
	Long: `Applies the built-in patch to a regulation archive.

The patch command:
1. Takes the archive lock
2. Creates a backup unless one already exists
3. Loads the archive and applies every write in memory
4. Writes the archive back atomically
5. Re-reads the file and verifies every patched field

An existing backup is never overwritten, so it always holds the archive as it
was before regpatch first touched it. If any write would fall outside the
archive, nothing is written.`,
	Example: `  # Patch ./regulation.bin
  regpatch

  # Preview the writes without touching the file
  regpatch patch --dry-run game/regulation.bin

  # Report every verification mismatch instead of the first
  regpatch patch --all game/regulation.bin

  # Use record offsets for a different game version
  regpatch patch --layout layouts/1.10.yaml game/regulation.bin`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPatch(cmd.Context(), args)
	},
}

func init() {
	addPatchFlags(patchCmd)
	rootCmd.AddCommand(patchCmd)
}

func addPatchFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&patchDryRun, "dry-run", "n", false,
		"Preview writes without modifying the archive")
	cmd.Flags().BoolVar(&patchNoVerify, "no-verify", false,
		"Skip re-reading the archive after writing")
	cmd.Flags().BoolVar(&patchAll, "all", false,
		"Report every verification mismatch, not just the first")
	cmd.Flags().StringVar(&patchLayout, "layout", "",
		"YAML layout profile (overrides config)")
	cmd.Flags().StringVarP(&patchBackupSuffix, "backup-suffix", "b", "",
		"Suffix for the backup file (default from config, \".backup\")")
}

// backupSuffix is the flag value when set, else the configured suffix.
func backupSuffix() string {
	if patchBackupSuffix != "" {
		return patchBackupSuffix
	}
	return cfg.BackupSuffix
}

type patchStepJSON struct {
	Name     string `json:"name"`
	Summary  string `json:"summary"`
	Applied  bool   `json:"applied"`
	Verified bool   `json:"verified"`
}

type patchJSON struct {
	Archive       string          `json:"archive"`
	Size          int             `json:"size"`
	DryRun        bool            `json:"dry_run"`
	BackupPath    string          `json:"backup_path,omitempty"`
	BackupCreated bool            `json:"backup_created"`
	Steps         []patchStepJSON `json:"steps"`
	Changed       int             `json:"changed"`
	Verified      bool            `json:"verified"`
	Duration      string          `json:"duration"`
	Error         string          `json:"error,omitempty"`
}

func runPatch(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	path := archiveArg(args)

	table, err := loadTable(patchLayout)
	if err != nil {
		return err
	}

	p := patcher.New(patcher.Options{
		Table:        table,
		BackupSuffix: backupSuffix(),
		Lock:         cfg.Lock,
		DryRun:       patchDryRun,
		SkipVerify:   patchNoVerify,
		VerifyAll:    patchAll || cfg.VerifyAll,
		Tolerance:    cfg.Tolerance,
		Logger:       logger.L,
	})

	if !jsonOut {
		printInfo("Patching archive: %s\n", path)
		if patchDryRun {
			printInfo("Mode: DRY-RUN (no changes will be made)\n")
		}
		printInfo("\n")
	}

	res, runErr := p.Run(ctx, path)

	if jsonOut {
		if err := printJSON(patchSummary(p, res, runErr)); err != nil {
			return err
		}
		return runErr
	}

	if res.Backup.Path != "" {
		if res.Backup.Created {
			printInfo("✓ Backup created: %s\n", res.Backup.Path)
		} else {
			printInfo("✓ Backup exists:  %s\n", res.Backup.Path)
		}
	}

	if res.Journal != nil {
		for _, st := range p.Spec().Steps {
			printInfo("✓ %s\n", st.Summary)
		}
		if verbose || patchDryRun {
			printInfo("\n%s\n", res.Journal.Export())
		}
	}

	if runErr != nil {
		if errors.Is(runErr, format.ErrVerification) && res.Report != nil {
			printInfo("\nVerification failed:\n")
			for _, f := range res.Report.Failures {
				printInfo("  ✗ %s\n", f.Error())
			}
		}
		return runErr
	}

	switch {
	case patchDryRun:
		printInfo("\n✓ Dry-run complete: %d of %d writes would change bytes.\n",
			len(res.Journal.Changed()), res.Journal.AppliedCount())
	case res.Report != nil:
		printInfo("✓ Verification passed (%d fields)\n", len(res.Report.Checks))
		printInfo("\n✓ Archive patched successfully!\n")
	default:
		printInfo("\n✓ Archive patched (verification skipped).\n")
	}
	printVerbose("Duration: %v\n", res.Duration)
	return nil
}

func patchSummary(p *patcher.Patcher, res *patcher.Result, err error) patchJSON {
	out := patchJSON{
		Archive:       res.ArchivePath,
		Size:          res.ArchiveSize,
		DryRun:        res.DryRun,
		BackupPath:    res.Backup.Path,
		BackupCreated: res.Backup.Created,
		Verified:      res.Report != nil && res.Report.OK(),
		Duration:      res.Duration.String(),
		Error:         errString(err),
	}
	if res.Journal != nil {
		out.Changed = len(res.Journal.Changed())
	}
	for _, st := range p.Spec().Steps {
		s := patchStepJSON{Name: st.Name, Summary: st.Summary, Applied: res.Journal != nil}
		if res.Report != nil {
			s.Verified = res.Report.StepOK(st.Name)
		}
		out.Steps = append(out.Steps, s)
	}
	return out
}
