// ABOUTME: Check command validating capacity severity for CI/CD pipelines
// ABOUTME: Plans an inventory and fails the build when pools cross the severity gate

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/markalston/placement-planner/cli/internal/client"
	"github.com/spf13/cobra"
)

var (
	checkInventoryPath string
	checkMaxSeverity   string
)

// severityRank orders the backend's status names so the gate can compare
// them. Unknown names rank above everything and fail the check.
var severityRank = map[string]int{
	"healthy":       0,
	"moderate":      1,
	"high":          2,
	"critical":      3,
	"over_capacity": 4,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check placement capacity severity",
	Long: `Plan an inventory and exit non-zero if any pool's status exceeds the
allowed severity, or if any workload is left unplaced.

Exit codes:
  0 - All pools at or below the allowed severity
  1 - Severity gate exceeded or workloads unplaced
  2 - Error (connectivity, invalid input)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runCheck(ctx, os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkInventoryPath, "inventory", "i", "", "Path to inventory JSON file (required)")
	checkCmd.Flags().StringVar(&checkMaxSeverity, "max-severity", "moderate", "Worst pool status allowed (healthy, moderate, high, critical)")
	checkCmd.MarkFlagRequired("inventory")
}

// checkResult is one pool's verdict against the gate
type checkResult struct {
	PoolID   string  `json:"pool_id"`
	Status   string  `json:"status"`
	WorstPct float64 `json:"worst_pct"`
	Passed   bool    `json:"passed"`
}

// runCheck executes the severity gate and returns an exit code
func runCheck(ctx context.Context, w io.Writer) int {
	gate, ok := severityRank[strings.ToLower(checkMaxSeverity)]
	if !ok {
		fmt.Fprintf(w, "Error: unknown severity %q\n", checkMaxSeverity)
		return 2
	}

	report, _, code := planInventory(ctx, w, checkInventoryPath)
	if code != 0 {
		return code
	}

	results := make([]checkResult, 0, len(report.Pools))
	failed := 0
	for _, pool := range report.Pools {
		rank, known := severityRank[pool.Status]
		passed := known && rank <= gate
		if !passed {
			failed++
		}
		results = append(results, checkResult{
			PoolID:   pool.PoolID,
			Status:   pool.Status,
			WorstPct: worstPct(pool.UtilizationPct),
			Passed:   passed,
		})
	}

	if IsJSONOutput() {
		out, _ := json.MarshalIndent(map[string]interface{}{
			"max_severity": checkMaxSeverity,
			"results":      results,
			"unplaced":     len(report.Unplaced),
		}, "", "  ")
		fmt.Fprintln(w, string(out))
	} else {
		for _, r := range results {
			mark := "PASS"
			if !r.Passed {
				mark = "FAIL"
			}
			fmt.Fprintf(w, "%s  %-24s %s (worst %.1f%%)\n", mark, r.PoolID, r.Status, r.WorstPct)
		}
		if len(report.Unplaced) > 0 {
			fmt.Fprintf(w, "FAIL  %d workloads unplaced\n", len(report.Unplaced))
		}
	}

	if failed > 0 || len(report.Unplaced) > 0 {
		return 1
	}
	return 0
}

// worstPct returns the highest utilization across the three resources
func worstPct(v client.ResourceVector) float64 {
	worst := v.CPU
	if v.Memory > worst {
		worst = v.Memory
	}
	if v.Storage > worst {
		worst = v.Storage
	}
	return worst
}
