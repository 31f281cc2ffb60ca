package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/hweitzel/mixdesign/internal/design"
	"github.com/hweitzel/mixdesign/internal/opt"
	"github.com/hweitzel/mixdesign/internal/store"
)

var (
	genMixtures  int
	genMin       string
	genMax       string
	genNames     string
	genLevels    string
	genIters     int
	genSeed      int64
	genAlgorithm string
	genPopSize   int
	genOutPath   string
	genTracePath string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an optimized design matrix",
	Long: `Generates a calibration design matrix for the given component
concentration ranges and writes it as CSV along with its quality report.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&genMixtures, "mixtures", 0, "Number of mixtures (required)")
	generateCmd.Flags().StringVar(&genMin, "min", "", "Comma-separated minimum concentrations (required)")
	generateCmd.Flags().StringVar(&genMax, "max", "", "Comma-separated maximum concentrations (required)")
	generateCmd.Flags().StringVar(&genNames, "names", "", "Comma-separated component names")
	generateCmd.Flags().StringVar(&genLevels, "levels", "", "Comma-separated concentration levels per component")
	generateCmd.Flags().IntVar(&genIters, "iters", design.DefaultMaxIter, "Max iterations per stage")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "Random seed (0 = time-based)")
	generateCmd.Flags().StringVar(&genAlgorithm, "algorithm", "adaptive", "Optimization algorithm: adaptive, mayfly")
	generateCmd.Flags().IntVar(&genPopSize, "pop", 20, "Population size (mayfly only)")
	generateCmd.Flags().StringVar(&genOutPath, "out", "design.csv", "Output CSV path (- for stdout)")
	generateCmd.Flags().StringVar(&genTracePath, "trace", "", "Write per-iteration trace to this JSONL file")

	generateCmd.MarkFlagRequired("mixtures")
	generateCmd.MarkFlagRequired("min")
	generateCmd.MarkFlagRequired("max")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	xmin, err := parseFloats(genMin)
	if err != nil {
		return fmt.Errorf("invalid --min: %w", err)
	}
	xmax, err := parseFloats(genMax)
	if err != nil {
		return fmt.Errorf("invalid --max: %w", err)
	}
	levels, err := parseInts(genLevels)
	if err != nil {
		return fmt.Errorf("invalid --levels: %w", err)
	}

	seed := genSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	cfg := design.GenerateConfig{
		Mixtures: genMixtures,
		Xmin:     xmin,
		Xmax:     xmax,
		Names:    parseNames(genNames),
		Levels:   levels,
		MaxIter:  genIters,
	}
	if _, err := cfg.Check(); err != nil {
		return err
	}

	var trace *json.Encoder
	if genTracePath != "" {
		f, err := os.Create(genTracePath)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		defer f.Close()
		trace = json.NewEncoder(f)
	}

	slog.Info("generating design", "mixtures", genMixtures,
		"components", len(xmin), "algorithm", genAlgorithm, "seed", seed)

	start := time.Now()
	var result *design.Design

	switch genAlgorithm {
	case "adaptive":
		cfg.Progress = func(stage, iteration int, x *mat.Dense) {
			if trace == nil {
				return
			}
			dmax, derr := design.Dmax(x)
			if derr != nil {
				return
			}
			trace.Encode(store.TraceEntry{
				Stage:       stage,
				Iteration:   iteration,
				Dmax:        dmax,
				MinDistance: design.MinDistance(x),
				Timestamp:   time.Now().UnixMilli(),
			})
		}
		rng := rand.New(rand.NewSource(seed))
		result, err = design.Generate(rng, cfg)
	case "mayfly":
		result, err = opt.GenerateDesign(opt.NewMayfly(genIters, genPopSize, seed), cfg)
	default:
		return fmt.Errorf("unknown algorithm: %s", genAlgorithm)
	}
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	elapsed := time.Since(start)
	slog.Info("design ready",
		"dmax", result.Report.Dmax,
		"minDistance", result.Report.MinDistance,
		"maxAbsCorrelation", result.Report.MaxAbsCorrelation,
		"elapsed", elapsed.Round(time.Millisecond))

	if err := writeDesignCSV(genOutPath, result); err != nil {
		return err
	}

	out, _ := json.MarshalIndent(result.Report, "", "  ")
	fmt.Println(string(out))
	return nil
}

func writeDesignCSV(path string, d *design.Design) error {
	r, _ := d.Matrix.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		rows[i] = make([]float64, len(d.Names))
		copy(rows[i], d.Matrix.RawRowView(i))
	}

	if path == "-" {
		return store.WriteCSV(os.Stdout, d.Names, rows)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()

	if err := store.WriteCSV(f, d.Names, rows); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	slog.Info("wrote design matrix", "path", path)
	return nil
}

func parseFloats(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseInts(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseNames(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
