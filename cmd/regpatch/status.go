package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/regpatch/internal/backup"
)

var statusCmd = &cobra.Command{
	Use:   "status [archive]",
	Short: "Compare the archive with its backup",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(args)
	},
}

func init() {
	statusCmd.Flags().StringVarP(&patchBackupSuffix, "backup-suffix", "b", "",
		"Suffix for the backup file (default from config, \".backup\")")
	rootCmd.AddCommand(statusCmd)
}

type statusJSON struct {
	*backup.Status
	Modified bool `json:"modified"`
}

func runStatus(args []string) error {
	st, err := backup.Inspect(archiveArg(args), backupSuffix())
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(statusJSON{Status: st, Modified: st.Modified()})
	}

	printInfo("Archive: %s\n", st.ArchivePath)
	printInfo("  Size:   %s bytes\n", numbers.Sprint(st.ArchiveSize))
	printInfo("  SHA256: %s\n", st.ArchiveSHA256)
	if !st.BackupExists {
		printInfo("Backup:  %s (missing)\n", st.BackupPath)
		return nil
	}
	printInfo("Backup:  %s\n", st.BackupPath)
	printInfo("  Size:   %s bytes\n", numbers.Sprint(st.BackupSize))
	printInfo("  SHA256: %s\n", st.BackupSHA256)
	if st.Modified() {
		printInfo("State:   modified since backup\n")
	} else {
		printInfo("State:   identical to backup\n")
	}
	return nil
}
