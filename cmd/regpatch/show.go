package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regpatch/internal/archive"
)

var showLayout string

func init() {
	cmd := newShowCmd()
	cmd.Flags().StringVar(&showLayout, "layout", "", "YAML layout profile (overrides config)")
	rootCmd.AddCommand(cmd)
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [archive]",
		Short: "Dump the current value of every patchable field",
		Long: `The show command reads each field of the layout table from the archive
without modifying it. Fields that fall outside a truncated archive are listed
as out of range.

Example:
  regpatch show
  regpatch show --json game/regulation.bin`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(args)
		},
	}
}

type fieldJSON struct {
	Record string `json:"record"`
	Field  string `json:"field"`
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Value  string `json:"value,omitempty"`
	Error  string `json:"error,omitempty"`
}

type showJSON struct {
	Archive string      `json:"archive"`
	Size    int         `json:"size"`
	Fields  []fieldJSON `json:"fields"`
}

func runShow(args []string) error {
	path := archiveArg(args)
	table, err := loadTable(showLayout)
	if err != nil {
		return err
	}

	v, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer v.Close()

	out := showJSON{Archive: path, Size: v.Len()}
	for _, rec := range table.Records() {
		for _, f := range rec.Fields {
			fj := fieldJSON{Record: rec.Name, Field: f.Name, Type: f.Type.String()}
			if off, ok := rec.FieldOffset(f); ok {
				fj.Offset = off
			}
			off, _, err := table.Resolve(rec.Name, f.Name, v.Len())
			if err != nil {
				fj.Error = err.Error()
			} else if val, err := v.ReadValue(off, f.Type); err != nil {
				fj.Error = err.Error()
			} else {
				fj.Value = val.String()
			}
			out.Fields = append(out.Fields, fj)
		}
	}

	if jsonOut {
		return printJSON(out)
	}

	printInfo("Archive: %s (%s bytes)\n\n", path, numbers.Sprint(out.Size))
	last := ""
	for _, f := range out.Fields {
		if f.Record != last {
			printInfo("%s\n", f.Record)
			last = f.Record
		}
		val := f.Value
		if f.Error != "" {
			val = "<out of range>"
			printVerbose("    %s\n", f.Error)
		}
		printInfo("  %-14s %-4s 0x%08X  %s\n", f.Field, f.Type, f.Offset, val)
	}
	return nil
}

// formatOffset renders an offset in hex with its grouped decimal value.
func formatOffset(off int) string {
	return fmt.Sprintf("0x%08X (%s)", off, numbers.Sprint(off))
}
