package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"vitiharvest-backend/lib/serviceutil"
	"vitiharvest-backend/services/harvest/query"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
)

var snapshotOption *string

func init() {
	snapshotOption = snapshotCmd.Flags().String("option", "", "Dataset to snapshot (producao, processamento, comercializacao, importacao, exportacao).")
	rootCmd.AddCommand(snapshotCmd)
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot --option <option>",
	Short: "Re-harvests an option's full historical range and persists it to the snapshot store.",
	Run: func(cmd *cobra.Command, args []string) {
		opt := query.Option(*snapshotOption)
		valid := false
		for _, o := range query.Options() {
			if o == opt {
				valid = true
				break
			}
		}
		if !valid {
			fmt.Fprintf(os.Stderr, "invalid option %q, choose one of %v\n", *snapshotOption, query.Options())
			os.Exit(1)
		}

		service, cleanup, err := createService()
		if err != nil {
			serviceutil.Fatal("failed to initialize harvest service", err)
		}
		defer cleanup()

		var bar *pb.ProgressBar
		progress := func(done, total int) {
			if bar == nil {
				bar = pb.Full.Start(total)
				bar.Set(pb.CleanOnFinish, true)
			}
			bar.SetCurrent(int64(done))
		}

		t1 := time.Now()
		report, err := service.BulkHarvest(cmd.Context(), opt, progress)
		if bar != nil {
			bar.Finish()
		}
		if err != nil {
			serviceutil.Fatal("bulk harvest aborted", err)
		}

		slog.Info(
			"bulk harvest finished",
			"option", opt,
			"processed", len(report.Processed),
			"errors", len(report.Errors),
			"seconds", time.Since(t1).Seconds(),
		)
		for _, msg := range report.Errors {
			fmt.Fprintln(os.Stderr, msg)
		}
	},
}
