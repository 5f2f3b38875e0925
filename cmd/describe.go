package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/bikedash/internal/overview"
	"github.com/KaramelBytes/bikedash/internal/utils"
)

var (
	descOutputPath string
	descSampleRows int
	descOutliers   bool
	descOutlierThr float64
	descJSON       bool
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Summarize the dataset columns: kinds, missing values, stats and outliers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := overview.DefaultOptions()
		if descSampleRows > 0 {
			opt.SampleRows = descSampleRows
		}
		if cmd.Flags().Changed("outliers") {
			opt.Outliers = descOutliers
		}
		if descOutlierThr > 0 {
			opt.OutlierThreshold = descOutlierThr
		}
		log, err := newLogger(effectiveConfig())
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ds, err := datasetLoader(log)()
		if err != nil {
			return err
		}
		rep := overview.Analyze(ds, opt)

		var out []byte
		if descJSON {
			if out, err = utils.PrettyJSON(rep); err != nil {
				return err
			}
		} else {
			out = []byte(rep.Markdown())
		}

		if descOutputPath != "" {
			if err := utils.SafeWriteFile(descOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", descOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "write the summary to this file instead of stdout")
	describeCmd.Flags().IntVar(&descSampleRows, "sample-rows", 5, "number of sample rows to include")
	describeCmd.Flags().BoolVar(&descOutliers, "outliers", true, "count robust z-score outliers per numeric column")
	describeCmd.Flags().Float64Var(&descOutlierThr, "outlier-threshold", 3.5, "robust |z| above which a value counts as an outlier")
	describeCmd.Flags().BoolVar(&descJSON, "json", false, "emit JSON instead of markdown")
}
