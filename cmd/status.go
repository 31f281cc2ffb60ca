package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var serverURL string

var statusCmd = &cobra.Command{
	Use:   "status [design-id]",
	Short: "Query server status or a specific design job",
	Long: `Queries the server for design job status.
If no design-id is provided, lists all jobs.
If a design-id is provided, shows detailed status for that job.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listServerJobs(fmt.Sprintf("%s/api/v1/designs", serverURL))
	}
	id := args[0]
	return getServerJob(fmt.Sprintf("%s/api/v1/designs/%s", serverURL, id), id)
}

func listServerJobs(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var jobs []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No design jobs found")
		return nil
	}

	fmt.Printf("Found %d design job(s):\n\n", len(jobs))
	for _, job := range jobs {
		fmt.Printf("Design ID: %s\n", job["id"])
		fmt.Printf("  State: %s\n", job["state"])
		if config, ok := job["config"].(map[string]interface{}); ok {
			fmt.Printf("  Mixtures: %v\n", config["mixtures"])
			fmt.Printf("  Algorithm: %v\n", config["algorithm"])
		}
		if dmax, ok := job["dmax"].(float64); ok && dmax > 0 {
			fmt.Printf("  Dmax: %.4f\n", dmax)
		}
		fmt.Println()
	}

	return nil
}

func getServerJob(url, id string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("design not found: %s", id)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Design: %s\n", status["id"])
	fmt.Printf("State: %s\n", status["state"])
	fmt.Println()

	if config, ok := status["config"].(map[string]interface{}); ok {
		fmt.Println("Configuration:")
		fmt.Printf("  Mixtures: %v\n", config["mixtures"])
		fmt.Printf("  Algorithm: %v\n", config["algorithm"])
		fmt.Printf("  Iterations: %v\n", config["maxIter"])
		fmt.Printf("  Seed: %v\n", config["seed"])
		fmt.Println()
	}

	fmt.Println("Progress:")
	fmt.Printf("  Stage: %v\n", status["stage"])
	fmt.Printf("  Iteration: %v\n", status["iteration"])
	if dmax, ok := status["dmax"].(float64); ok {
		fmt.Printf("  Dmax: %.4f\n", dmax)
	}
	if minDist, ok := status["minDistance"].(float64); ok {
		fmt.Printf("  Min distance: %.4f\n", minDist)
	}

	if report, ok := status["report"].(map[string]interface{}); ok {
		fmt.Println()
		fmt.Println("Report:")
		fmt.Printf("  Dmax: %.4f\n", report["dmax"])
		fmt.Printf("  Min distance: %.4f\n", report["minDistance"])
		fmt.Printf("  Max |correlation|: %.4f\n", report["maxAbsCorrelation"])
	}

	if errMsg, ok := status["error"].(string); ok && errMsg != "" {
		fmt.Printf("\nError: %s\n", errMsg)
	}

	return nil
}
