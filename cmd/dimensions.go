package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/salesdash/internal/dataset"
	"github.com/spf13/cobra"
)

var dimensionsCmd = &cobra.Command{
	Use:   "dimensions [file] [dimension]",
	Short: "List the distinct values of each dimension",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dims := dataset.Dimensions
		if len(args) == 2 {
			d, err := dataset.ParseDimension(args[1])
			if err != nil {
				return err
			}
			dims = []dataset.Dimension{d}
		}
		eng, err := loadEngine(args[:min(len(args), 1)])
		if err != nil {
			return err
		}
		for _, d := range dims {
			vals := eng.DistinctValues(d)
			fmt.Printf("%s (%d): %s\n", d, len(vals), strings.Join(vals, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dimensionsCmd)
	addSourceFlags(dimensionsCmd)
}
