package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/visionqc/inspect-cli/internal/pipeline"
)

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Classify every image in a folder and record the verdicts",
	Long:  "Scans a folder sequentially, classifying each image and inserting the verdict. Files already recorded (same path or same content) are skipped; individual failures are logged and the scan continues.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// A store that cannot even be opened aborts the whole batch up
		// front rather than failing once per file.
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		cls, err := initClassifier()
		if err != nil {
			return err
		}
		defer cls.Close()

		engine, err := initEngine()
		if err != nil {
			return err
		}

		scanner := &pipeline.Scanner{
			Classifier: cls,
			Engine:     engine,
			Store:      st,
			Extensions: cfg.Scan.Extensions,
		}

		report, err := scanner.ScanDir(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
