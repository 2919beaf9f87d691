package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/report"
	"github.com/iho/pocketledger/internal/usecase"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pocketledger-cli",
		Short:         "PocketLedger CLI tool",
		Long:          `A command line interface for interacting with the PocketLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the PocketLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(dashboardCmd(), notificationsCmd(), exportCmd(), csvCmd(), importCmd())
	return rootCmd
}

func dashboardCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals and upcoming bills for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/reports/dashboard"
			if period != "" {
				path += "?period=" + period
			}

			var d dto.DashboardResponse
			if err := getJSON(path, &d); err != nil {
				return err
			}

			printDashboard(cmd.OutOrStdout(), d)
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "Month as YYYY-MM (default: current month)")
	return cmd
}

func notificationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notifications",
		Short: "List pending debts that are due soon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var notes []report.Notification
			if err := getJSON("/api/v1/reports/notifications", &notes); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(notes) == 0 {
				fmt.Fprintln(out, "Nothing due soon")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, n := range notes {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", n.Date, n.Value.StringFixed(2), truncate(n.Message, 60))
			}
			return tw.Flush()
		},
	}
}

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download a JSON backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return download(cmd, "/api/v1/backup", out)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Write the backup to this file instead of stdout")
	return cmd
}

func csvCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Download visible entries as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return download(cmd, "/api/v1/backup/csv", out)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Write the CSV to this file instead of stdout")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Restore a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}

			resp, err := httpClient().Post(baseURL+"/api/v1/backup", "application/json", bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("error making request: %w", err)
			}
			defer resp.Body.Close()

			if err := checkStatus(resp); err != nil {
				return err
			}

			var result usecase.ImportResult
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries\n", result.Entries)
			if result.SettingsApplied {
				fmt.Fprintln(cmd.OutOrStdout(), "Settings restored")
			}
			return nil
		},
	}
}

func httpClient() *http.Client {
	return &http.Client{Timeout: timeout}
}

func getJSON(path string, v any) error {
	resp, err := httpClient().Get(baseURL + path)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func download(cmd *cobra.Command, path, out string) error {
	resp, err := httpClient().Get(baseURL + path)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if out == "" {
		_, err := io.Copy(cmd.OutOrStdout(), resp.Body)
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", out)
	return nil
}

// checkStatus turns a non-2xx response into an error carrying the API message.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)

	var apiErr dto.ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		if apiErr.Message != "" {
			return fmt.Errorf("request failed (status %d): %s: %s", resp.StatusCode, apiErr.Error, apiErr.Message)
		}
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(body), 200))
}

func printDashboard(w io.Writer, d dto.DashboardResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Period\t%s\n", d.Period)
	fmt.Fprintf(tw, "Received\t%s\n", d.Totals.Received.StringFixed(2))
	fmt.Fprintf(tw, "Income pending\t%s\n", d.Totals.IncomePending.StringFixed(2))
	fmt.Fprintf(tw, "Debt paid\t%s\n", d.Totals.DebtPaid.StringFixed(2))
	fmt.Fprintf(tw, "Debt pending\t%s\n", d.Totals.DebtPending.StringFixed(2))
	fmt.Fprintf(tw, "Balance\t%s\n", d.Totals.Balance.StringFixed(2))
	fmt.Fprintf(tw, "Projected\t%s\n", d.Totals.ProjectedBalance.StringFixed(2))
	if d.SavingsProgress != nil {
		fmt.Fprintf(tw, "Savings goal\t%s%%\n", d.SavingsProgress.StringFixed(0))
	}
	_ = tw.Flush()

	if len(d.UpcomingBills) > 0 {
		fmt.Fprintln(w, "\nUpcoming bills:")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, b := range d.UpcomingBills {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", b.Date, b.Value.StringFixed(2), truncate(b.Description, 40))
		}
		_ = tw.Flush()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
