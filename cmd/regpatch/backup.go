package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/regpatch/internal/backup"
	"github.com/joshuapare/regpatch/internal/lock"
	"github.com/joshuapare/regpatch/internal/logger"
)

var backupCmd = &cobra.Command{
	Use:   "backup [archive]",
	Short: "Create the archive backup if it does not exist",
	Long: `Copies the archive to <archive>.backup (or the configured suffix).
An existing backup is left untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBackup(args)
	},
}

func init() {
	backupCmd.Flags().StringVarP(&patchBackupSuffix, "backup-suffix", "b", "",
		"Suffix for the backup file (default from config, \".backup\")")
	rootCmd.AddCommand(backupCmd)
}

type backupJSON struct {
	Archive string `json:"archive"`
	Backup  string `json:"backup"`
	Created bool   `json:"created"`
	Size    int64  `json:"size"`
}

func runBackup(args []string) (err error) {
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

	res, err := backup.Ensure(path, backupSuffix())
	if err != nil {
		return err
	}
	logger.Info("backup ensured", "path", res.Path, "created", res.Created)

	if jsonOut {
		return printJSON(backupJSON{Archive: path, Backup: res.Path, Created: res.Created, Size: res.Size})
	}
	if res.Created {
		printInfo("✓ Backup created: %s (%s bytes)\n", res.Path, numbers.Sprint(res.Size))
	} else {
		printInfo("✓ Backup exists:  %s (%s bytes)\n", res.Path, numbers.Sprint(res.Size))
	}
	return nil
}
