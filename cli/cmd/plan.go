// ABOUTME: Plan command: one-shot automatic placement over an inventory file
// ABOUTME: Creates a session, plans, prints the report, and tears the session down

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/markalston/placement-planner/cli/internal/client"
	"github.com/spf13/cobra"
)

var planInventoryPath string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run automatic placement over an inventory file",
	Long: `Run automatic placement over an inventory file and print the
resulting utilization report.

The inventory file is JSON with "workloads" and "pools" arrays, matching
the backend's session load body.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runPlan(ctx, os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVarP(&planInventoryPath, "inventory", "i", "", "Path to inventory JSON file (required)")
	planCmd.MarkFlagRequired("inventory")
}

// runPlan executes the one-shot plan and returns an exit code
func runPlan(ctx context.Context, w io.Writer) int {
	report, summary, code := planInventory(ctx, w, planInventoryPath)
	if code != 0 {
		return code
	}

	if IsJSONOutput() {
		out, _ := json.MarshalIndent(map[string]interface{}{
			"summary": summary,
			"report":  report,
		}, "", "  ")
		fmt.Fprintln(w, string(out))
		return 0
	}

	fmt.Fprintf(w, "Placed %d/%d workloads across %d pools", summary.Placed, summary.TotalWorkloads, summary.PoolsUsed)
	if summary.FallbackPlaced > 0 {
		fmt.Fprintf(w, " (%d over capacity)", summary.FallbackPlaced)
	}
	fmt.Fprintln(w)

	for _, pool := range report.Pools {
		fmt.Fprintf(w, "  %-24s %-14s cpu %6.1f%%  memory %6.1f%%  storage %6.1f%%  (%d workloads)\n",
			pool.PoolID, pool.Status,
			pool.UtilizationPct.CPU, pool.UtilizationPct.Memory, pool.UtilizationPct.Storage,
			pool.WorkloadCount)
	}
	if len(report.Unplaced) > 0 {
		fmt.Fprintf(w, "Unplaced workloads: %d\n", len(report.Unplaced))
	}
	for _, rec := range report.Recommendations {
		fmt.Fprintf(w, "  ! %s\n", rec)
	}
	return 0
}

// planInventory runs the create/plan/report/delete session cycle.
// Returns a non-zero exit code on error.
func planInventory(ctx context.Context, w io.Writer, path string) (*client.Report, *client.PlanSummary, int) {
	inventory, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "Error: reading inventory: %v\n", err)
		return nil, nil, 2
	}
	if !json.Valid(inventory) {
		fmt.Fprintf(w, "Error: %s is not valid JSON\n", path)
		return nil, nil, 2
	}

	c := client.New(GetAPIURL())

	session, err := c.CreateSession(ctx, inventory)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return nil, nil, 2
	}
	defer c.DeleteSession(ctx, session.SessionID)

	summary, err := c.Plan(ctx, session.SessionID, false)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return nil, nil, 2
	}

	report, err := c.Report(ctx, session.SessionID)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return nil, nil, 2
	}
	return report, summary, 0
}
