package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regpatch/internal/format"
	"github.com/joshuapare/regpatch/internal/logger"
	"github.com/joshuapare/regpatch/internal/patcher"
)

var (
	verifyAll    bool
	verifyLayout string
)

func init() {
	cmd := newVerifyCmd()
	cmd.Flags().BoolVar(&verifyAll, "all", false, "Report every mismatch, not just the first")
	cmd.Flags().StringVar(&verifyLayout, "layout", "", "YAML layout profile (overrides config)")
	rootCmd.AddCommand(cmd)
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [archive]",
		Short: "Check that an archive carries the patch",
		Long: `The verify command reads the archive from disk and compares every
patched field with its expected value. Integers must match exactly; floats
must lie within the configured tolerance.

Example:
  regpatch verify
  regpatch verify --all game/regulation.bin`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
}

type checkJSON struct {
	Step     string `json:"step"`
	Record   string `json:"record"`
	Field    string `json:"field"`
	Offset   int    `json:"offset"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	OK       bool   `json:"ok"`
}

type verifyJSON struct {
	Archive string      `json:"archive"`
	OK      bool        `json:"ok"`
	Checks  []checkJSON `json:"checks"`
	Error   string      `json:"error,omitempty"`
}

func runVerify(args []string) error {
	path := archiveArg(args)
	table, err := loadTable(verifyLayout)
	if err != nil {
		return err
	}

	p := patcher.New(patcher.Options{
		Table:     table,
		VerifyAll: verifyAll || cfg.VerifyAll,
		Tolerance: cfg.Tolerance,
		Logger:    logger.L,
	})

	printVerbose("Verifying archive: %s\n", path)
	rep, verr := p.Verify(path)

	if jsonOut {
		out := verifyJSON{Archive: path, Error: errString(verr)}
		if rep != nil {
			out.OK = verr == nil && rep.OK()
			for _, c := range rep.Checks {
				out.Checks = append(out.Checks, checkJSON{
					Step:     c.Step,
					Record:   c.Record,
					Field:    c.Field,
					Offset:   c.Offset,
					Expected: c.Expected.String(),
					Actual:   c.Actual.String(),
					OK:       c.OK,
				})
			}
		}
		if err := printJSON(out); err != nil {
			return err
		}
		return verr
	}

	if rep != nil {
		for _, c := range rep.Checks {
			mark := "✓"
			if !c.OK {
				mark = "✗"
			}
			printVerbose("  %s %-12s %-14s 0x%08X  expected %-8s actual %s\n",
				mark, c.Record, c.Field, c.Offset, c.Expected, c.Actual)
		}
	}

	if verr != nil {
		if errors.Is(verr, format.ErrVerification) && rep != nil {
			printInfo("✗ Verification failed (%d of %d checked fields wrong)\n",
				len(rep.Failures), len(rep.Checks))
		}
		return verr
	}

	for _, st := range p.Spec().Steps {
		printInfo("✓ %s\n", st.Summary)
	}
	printInfo("✓ Verification passed (%d fields)\n", len(rep.Checks))
	return nil
}
