package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/hweitzel/mixdesign/internal/design"
	"github.com/hweitzel/mixdesign/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report <matrix.csv>",
	Short: "Compute the quality report for an existing design matrix",
	Long: `Reads a design matrix from CSV (header row with component names,
one mixture per data row) and prints its quality statistics as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open matrix: %w", err)
	}
	defer f.Close()

	names, rows, err := store.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("failed to read matrix: %w", err)
	}

	x := mat.NewDense(len(rows), len(names), nil)
	for i, row := range rows {
		x.SetRow(i, row)
	}

	report, err := design.QualityReport(x)
	if err != nil {
		return fmt.Errorf("failed to compute report: %w", err)
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))
	return nil
}
