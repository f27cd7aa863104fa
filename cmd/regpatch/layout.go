package main

import (
	"github.com/spf13/cobra"
)

var (
	layoutYAML    bool
	layoutProfile string
)

func init() {
	cmd := newLayoutCmd()
	cmd.Flags().BoolVar(&layoutYAML, "yaml", false, "Print the table as a YAML layout profile")
	cmd.Flags().StringVar(&layoutProfile, "layout", "", "YAML layout profile (overrides config)")
	rootCmd.AddCommand(cmd)
}

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Print the record layout table",
		Long: `The layout command prints where each patched record lives and the
minimum archive size the table needs. With --yaml it prints the table as a
profile that can be edited and passed back with --layout.

Example:
  regpatch layout
  regpatch layout --yaml > layouts/custom.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout()
		},
	}
}

type layoutFieldJSON struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Offset int    `json:"offset"`
}

type layoutRecordJSON struct {
	Name   string            `json:"name"`
	Base   int               `json:"base"`
	Stride int               `json:"stride"`
	Index  int               `json:"index"`
	Start  int               `json:"start"`
	Fields []layoutFieldJSON `json:"fields"`
}

func runLayout() error {
	table, err := loadTable(layoutProfile)
	if err != nil {
		return err
	}

	if layoutYAML {
		data, err := table.MarshalProfile()
		if err != nil {
			return err
		}
		printInfo("%s", data)
		return nil
	}

	if jsonOut {
		var out struct {
			MinSize int                `json:"min_archive_size"`
			Records []layoutRecordJSON `json:"records"`
		}
		out.MinSize = table.MinArchiveSize()
		for _, rec := range table.Records() {
			start, _ := rec.Start()
			rj := layoutRecordJSON{Name: rec.Name, Base: rec.BaseOffset, Stride: rec.Stride, Index: rec.Index, Start: start}
			for _, f := range rec.Fields {
				off, _ := rec.FieldOffset(f)
				rj.Fields = append(rj.Fields, layoutFieldJSON{Name: f.Name, Type: f.Type.String(), Offset: off})
			}
			out.Records = append(out.Records, rj)
		}
		return printJSON(out)
	}

	for _, rec := range table.Records() {
		start, _ := rec.Start()
		printInfo("%s  base 0x%X  stride 0x%X  index %d\n", rec.Name, rec.BaseOffset, rec.Stride, rec.Index)
		printInfo("  start %s\n", formatOffset(start))
		for _, f := range rec.Fields {
			off, _ := rec.FieldOffset(f)
			printInfo("  %-14s %-4s +0x%02X  %s\n", f.Name, f.Type, f.Offset, formatOffset(off))
		}
	}
	printInfo("\nMinimum archive size: %s bytes\n", numbers.Sprint(table.MinArchiveSize()))
	return nil
}
