package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hweitzel/mixdesign/internal/store"
)

var (
	designsDataDir string
	keepLast       int
	olderThanDays  int
	forceClean     bool
)

var designsCmd = &cobra.Command{
	Use:   "designs",
	Short: "Manage stored designs",
	Long: `Manage stored design matrices including listing, inspecting and
cleaning old designs.`,
}

var listDesignsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored designs",
	Long:  `Display all stored designs with metadata including ID, size, Dmax and creation time.`,
	RunE:  runListDesigns,
}

var showDesignCmd = &cobra.Command{
	Use:   "show <design-id>",
	Short: "Show a stored design in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowDesign,
}

var deleteDesignCmd = &cobra.Command{
	Use:   "delete <design-id>",
	Short: "Delete a stored design",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteDesign,
}

var cleanDesignsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old designs",
	Long: `Delete old designs based on retention policy. You can specify how
many designs to keep or delete designs older than N days.`,
	RunE: runCleanDesigns,
}

func init() {
	rootCmd.AddCommand(designsCmd)

	designsCmd.AddCommand(listDesignsCmd)
	designsCmd.AddCommand(showDesignCmd)
	designsCmd.AddCommand(deleteDesignCmd)
	designsCmd.AddCommand(cleanDesignsCmd)

	designsCmd.PersistentFlags().StringVar(&designsDataDir, "data-dir", "./data", "Base directory for design storage")

	cleanDesignsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the last N designs (0 = keep all)")
	cleanDesignsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete designs older than N days (0 = no age limit)")
	cleanDesignsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func runListDesigns(cmd *cobra.Command, args []string) error {
	designStore, err := store.NewFSStore(designsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create design store: %w", err)
	}

	infos, err := designStore.ListDesigns()
	if err != nil {
		return fmt.Errorf("failed to list designs: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No designs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DESIGN ID\tCREATED\tMIXTURES\tCOMPONENTS\tDMAX\tSIZE")
	fmt.Fprintln(w, "---------\t-------\t--------\t----------\t----\t----")

	for _, info := range infos {
		designDir := filepath.Join(designsDataDir, "designs", info.ID)
		size, err := getDirSize(designDir)
		sizeStr := "unknown"
		if err == nil {
			sizeStr = formatBytes(size)
		}

		displayID := info.ID
		if len(displayID) > 12 {
			displayID = displayID[:12] + "..."
		}

		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.4f\t%s\n",
			displayID,
			info.CreatedAt.Format("2006-01-02 15:04:05"),
			info.Mixtures,
			info.Components,
			info.Dmax,
			sizeStr,
		)
	}

	w.Flush()

	fmt.Printf("\nTotal designs: %d\n", len(infos))
	return nil
}

func runShowDesign(cmd *cobra.Command, args []string) error {
	designStore, err := store.NewFSStore(designsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create design store: %w", err)
	}

	saved, err := designStore.LoadDesign(args[0])
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode design: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runDeleteDesign(cmd *cobra.Command, args []string) error {
	designStore, err := store.NewFSStore(designsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create design store: %w", err)
	}

	if err := designStore.DeleteDesign(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted design %s\n", args[0])
	return nil
}

func runCleanDesigns(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	designStore, err := store.NewFSStore(designsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create design store: %w", err)
	}

	infos, err := designStore.ListDesigns()
	if err != nil {
		return fmt.Errorf("failed to list designs: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No designs to clean.")
		return nil
	}

	toDelete := selectDesignsForDeletion(infos, keepLast, olderThanDays)
	if len(toDelete) == 0 {
		fmt.Println("No designs match deletion criteria.")
		return nil
	}

	fmt.Printf("Found %d design(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		displayID := info.ID
		if len(displayID) > 12 {
			displayID = displayID[:12] + "..."
		}
		fmt.Printf("  - %s (%d mixtures, %s)\n",
			displayID,
			info.Mixtures,
			info.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}

	if !forceClean {
		fmt.Print("\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	deleted := 0
	failed := 0
	for _, info := range toDelete {
		if err := designStore.DeleteDesign(info.ID); err != nil {
			slog.Error("Failed to delete design", "id", info.ID, "error", err)
			failed++
		} else {
			slog.Info("Deleted design", "id", info.ID)
			deleted++
		}
	}

	fmt.Printf("\nDeleted %d design(s), %d failed.\n", deleted, failed)
	return nil
}

// selectDesignsForDeletion applies the retention policy to the design list
func selectDesignsForDeletion(infos []store.DesignInfo, keepLast, olderThanDays int) []store.DesignInfo {
	var toDelete []store.DesignInfo
	selected := make(map[string]bool)

	if olderThanDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -olderThanDays)
		for _, info := range infos {
			if info.CreatedAt.Before(cutoff) {
				toDelete = append(toDelete, info)
				selected[info.ID] = true
			}
		}
	}

	if keepLast > 0 && len(infos) > keepLast {
		sorted := make([]store.DesignInfo, len(infos))
		copy(sorted, infos)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		})

		for _, info := range sorted[:len(sorted)-keepLast] {
			if !selected[info.ID] {
				toDelete = append(toDelete, info)
				selected[info.ID] = true
			}
		}
	}

	return toDelete
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats a byte count in human-readable form
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
