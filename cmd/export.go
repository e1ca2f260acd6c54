package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/salesdash/internal/export"
	"github.com/KaramelBytes/salesdash/internal/utils"
	"github.com/spf13/cobra"
)

var expOutputPath string

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the filtered rows to CSV or XLSX",
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
		out := expOutputPath
		if out == "" {
			out = export.CSVFilename
		}
		var data []byte
		switch strings.ToLower(filepath.Ext(out)) {
		case ".xlsx":
			var buf bytes.Buffer
			if err := export.WriteXLSX(&buf, snap.View); err != nil {
				return err
			}
			data = buf.Bytes()
		case ".csv", "":
			data = snap.Export
		default:
			return fmt.Errorf("unsupported export format: %s (use .csv or .xlsx)", filepath.Ext(out))
		}
		if err := utils.SafeWriteFile(out, data); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		if snap.Empty() {
			fmt.Printf("⚠ No rows matched the selected filters; wrote header only to %s\n", out)
			return nil
		}
		fmt.Printf("✓ Exported %d rows to %s\n", snap.Rows, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&expOutputPath, "output", "o", "", "output path (.csv or .xlsx; default "+export.CSVFilename+")")
	addSourceFlags(exportCmd)
	addFilterFlags(exportCmd)
}
