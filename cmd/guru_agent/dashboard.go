package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/matching-guru/internal/api"
	"github.com/jonathan/matching-guru/internal/dashboard"
	"github.com/jonathan/matching-guru/internal/logger"
	"github.com/jonathan/matching-guru/internal/observability"
	"github.com/jonathan/matching-guru/internal/session"
	"github.com/jonathan/matching-guru/internal/types"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Derive the participant dashboard",
	Long: `Derives the dashboard view model (unconfirmed groups, stale communication,
feedback due, never-contacted matches and meeting suggestions) from a saved
dashboard payload or live from the upstream API.`,
	RunE: runDashboard,
}

var (
	dashboardInput   string
	dashboardAPIURL  string
	dashboardToken   string
	dashboardNow     string
	dashboardTimeout time.Duration
	dashboardVerbose bool
)

func init() {
	dashboardCmd.Flags().StringVarP(&dashboardInput, "in", "i", "", "Path to dashboard JSON payload")
	dashboardCmd.Flags().StringVar(&dashboardAPIURL, "api-url", "", "Upstream API base URL (instead of --in)")
	dashboardCmd.Flags().StringVar(&dashboardToken, "token", "", "Bearer token for --api-url")
	dashboardCmd.Flags().StringVar(&dashboardNow, "now", "", "Reference time in RFC3339 (defaults to the current time)")
	dashboardCmd.Flags().DurationVar(&dashboardTimeout, "timeout", api.DefaultTimeout, "Upstream request timeout")
	dashboardCmd.Flags().BoolVarP(&dashboardVerbose, "verbose", "v", false, "Print the dashboard to stderr")

	dashboardCmd.MarkFlagsMutuallyExclusive("in", "api-url")
	dashboardCmd.MarkFlagsRequiredTogether("api-url", "token")

	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	now, err := parseNow(dashboardNow, time.Now)
	if err != nil {
		return err
	}

	data, err := loadDashboardData(cmd.Context(), dashboardInput, dashboardAPIURL, dashboardToken, dashboardTimeout)
	if err != nil {
		return err
	}

	vm := dashboard.Build(*data, now)
	if dashboardVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintDashboard(vm)
	}
	return writeJSON(cmd.OutOrStdout(), vm)
}

// parseNow returns the --now value, or clock() when it is empty
func parseNow(value string, clock func() time.Time) (time.Time, error) {
	if value == "" {
		return clock(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: %w", value, err)
	}
	return t, nil
}

// loadDashboardData reads the payload from a file or fetches it upstream
func loadDashboardData(ctx context.Context, inPath, apiURL, token string, timeout time.Duration) (*types.DashboardData, error) {
	switch {
	case inPath != "":
		var data types.DashboardData
		if err := readJSON(inPath, &data); err != nil {
			return nil, err
		}
		return &data, nil
	case apiURL != "":
		if ctx == nil {
			ctx = context.Background()
		}
		client, err := api.NewClient(apiURL, &api.Options{
			Timeout: timeout,
			Logger:  logger.New("warn", "console"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create API client: %w", err)
		}
		data, err := client.FetchDashboard(ctx, session.Static{Token: token})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch dashboard: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("either --in or --api-url is required")
	}
}
