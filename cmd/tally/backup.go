package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/backup"
	"tally/internal/cli"
)

func backupCmd() *cobra.Command {
	var (
		dir    string
		output string
		csv    bool
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write the ledger to a JSON backup file",
		Long: `backup writes every transaction, category and budget to a JSON document
that restore can read back. With --csv the transactions are exported as CSV
instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ledger, res, err := openLedger(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeBackend(res)

			now := time.Now().In(cfg.Location())
			path := output
			if path == "" {
				kind, ext := "backup", "json"
				if csv {
					kind, ext = "transactions", "csv"
				}
				path = filepath.Join(dir, backup.FileName(kind, now, ext))
			}

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			defer func() {
				if cerr := f.Close(); cerr != nil && err == nil {
					err = fmt.Errorf("close %s: %w", path, cerr)
				}
			}()

			snap := ledger.Snapshot()
			if csv {
				err = backup.WriteCSV(f, snap, cfg.Location())
			} else {
				err = backup.Write(f, backup.NewDocument(snap, now))
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf("Wrote %d transactions to %s", len(snap.Transactions), path)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory for the generated file name")
	cmd.Flags().StringVarP(&output, "output", "o", "", "explicit output path, overrides --dir")
	cmd.Flags().BoolVar(&csv, "csv", false, "export transactions as CSV")
	return cmd
}

func restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the ledger with a JSON backup",
		Long: `restore reads a document written by backup. Collections present in the
file replace the current ones; collections missing from it are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open backup: %w", err)
			}
			defer f.Close()

			doc, err := backup.Read(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			ledger, res, err := openLedger(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeBackend(res)

			snap := doc.Apply(ledger.Snapshot())
			if err := ledger.Import(cmd.Context(), snap); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf(
				"Restored %d transactions, %d categories, %d budgets",
				len(snap.Transactions), len(snap.Categories), len(snap.Budgets))))
			return nil
		},
	}
}
