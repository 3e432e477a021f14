// ABOUTME: Health command for the placement-planner CLI
// ABOUTME: Verifies backend connectivity for pipelines and operators

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

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend health",
	Long:  `Check that the placement planner backend is reachable and responding.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runHealth(ctx, os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// runHealth executes the health check and returns an exit code
func runHealth(ctx context.Context, w io.Writer) int {
	c := client.New(GetAPIURL())

	resp, err := c.Health(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		out, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Fprintln(w, string(out))
		return 0
	}

	fmt.Fprintf(w, "Backend: %s\n", resp.Status)
	fmt.Fprintf(w, "Live sessions: %d\n", resp.Sessions)
	if resp.VSphereConfigured {
		fmt.Fprintln(w, "vSphere inventory: configured")
	} else {
		fmt.Fprintln(w, "vSphere inventory: not configured")
	}
	return 0
}
