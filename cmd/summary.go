package cmd

import (
	"fmt"

	"github.com/KaramelBytes/salesdash/internal/report"
	"github.com/KaramelBytes/salesdash/internal/utils"
	"github.com/spf13/cobra"
)

var (
	sumOutputPath string
	sumJSON       bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary [file]",
	Short: "Summarize the filtered dataset: totals, leaders and every aggregate",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(args)
		if err != nil {
			return err
		}
		sel, err := selectionFromFlags(cmd, eng)
		if err != nil {
			return err
		}
		snap, err := eng.Run(sel)
		if err != nil {
			return err
		}

		var out []byte
		if sumJSON {
			if out, err = utils.PrettyJSON(snap); err != nil {
				return err
			}
		} else {
			out = []byte(report.New(snap, eng.Dataset()).Markdown())
		}

		if sumOutputPath != "" {
			if err := utils.SafeWriteFile(sumOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote summary to %s (%d of %d rows)\n", sumOutputPath, snap.Rows, snap.TotalRows)
			return nil
		}
		if snap.Empty() {
			fmt.Println("⚠ No data available for the selected filters.")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVarP(&sumOutputPath, "output", "o", "", "optional path to write the summary")
	summaryCmd.Flags().BoolVar(&sumJSON, "json", false, "emit the full snapshot as JSON instead of Markdown")
	addSourceFlags(summaryCmd)
	addFilterFlags(summaryCmd)
}
