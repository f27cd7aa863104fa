package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/regpatch/internal/backup"
	"github.com/joshuapare/regpatch/internal/lock"
	"github.com/joshuapare/regpatch/internal/logger"
)

var restoreCmd = &cobra.Command{
	Use:   "restore [archive]",
	Short: "Replace the archive with its backup",
	Long: `Overwrites the archive with the contents of its backup, undoing every
patch applied since the backup was taken. The backup itself is kept.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRestore(args)
	},
}

func init() {
	restoreCmd.Flags().StringVarP(&patchBackupSuffix, "backup-suffix", "b", "",
		"Suffix for the backup file (default from config, \".backup\")")
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(args []string) (err error) {
	path := archiveArg(args)

	if cfg.Lock {
		l, lerr := lock.Acquire(path)
		if lerr != nil {
			return lerr
		}
		defer func() {
			if rerr := l.Release(); rerr != nil && err == nil {
				err = rerr
			}
		}()
	}

	from, err := backup.Restore(path, backupSuffix())
	if err != nil {
		return err
	}
	logger.Info("archive restored", "archive", path, "backup", from)

	if jsonOut {
		return printJSON(map[string]string{"archive": path, "restored_from": from})
	}
	printInfo("✓ Restored %s from %s\n", path, from)
	return nil
}
