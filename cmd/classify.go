package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/visionqc/inspect-cli/internal/model"
)

var classifyNoSave bool

var classifyCmd = &cobra.Command{
	Use:   "classify <image>",
	Short: "Classify a single image and save the verdict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		cls, err := initClassifier()
		if err != nil {
			return err
		}
		defer cls.Close()

		engine, err := initEngine()
		if err != nil {
			return err
		}

		logits, err := cls.Heads(ctx, path)
		if err != nil {
			return err
		}

		verdict, err := engine.DecideLogits(logits.Defect, logits.Severity, logits.Location)
		if err != nil {
			return err
		}
		verdict = verdict.WithNoFindingDefaults()

		out := struct {
			model.Verdict
			Path string `json:"image_path"`
			ID   int64  `json:"id,omitempty"`
		}{Verdict: verdict, Path: path}

		if !classifyNoSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			// Upsert: re-saving a corrected verdict for the same image
			// content updates in place instead of duplicating.
			id, err := st.Upsert(ctx, model.Record{
				Path:   path,
				Label:  verdict.Label,
				Tier:   verdict.Tier,
				Zone:   verdict.Zone,
				Score:  verdict.Confidence,
				Detail: verdict.Description,
				Action: verdict.Action,
			})
			if err != nil {
				return eris.Wrap(err, "save verdict")
			}
			out.ID = id
			zap.L().Info("verdict saved", zap.Int64("id", id), zap.String("path", path))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyNoSave, "no-save", false, "print the verdict without persisting it")
	rootCmd.AddCommand(classifyCmd)
}
