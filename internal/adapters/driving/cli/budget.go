package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Inspect and control the monthly budget",
}

var budgetStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show spend, projection and alerts for the current period",
	Args:  cobra.NoArgs,
	RunE:  runBudgetStatus,
}

var budgetSetLimitCmd = &cobra.Command{
	Use:   "set-limit [amount]",
	Short: "Set the monthly spend limit",
	Long: `Sets the monthly limit in currency units. Zero disables budget
alerts. Past usage records are never altered.`,
	Args: cobra.ExactArgs(1),
	RunE: runBudgetSetLimit,
}

var budgetResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the project's usage records",
	Args:  cobra.NoArgs,
	RunE:  runBudgetReset,
}

func init() {
	budgetCmd.AddCommand(budgetStatusCmd)
	budgetCmd.AddCommand(budgetSetLimitCmd)
	budgetCmd.AddCommand(budgetResetCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudgetStatus(cmd *cobra.Command, _ []string) error {
	if budgetService == nil {
		return errors.New("budget service not configured")
	}

	status, err := budgetService.Status(cmd.Context(), projectFlag)
	if err != nil {
		return fmt.Errorf("budget status failed: %w", err)
	}

	cmd.Printf("Spend:     %.4f\n", status.Spend)
	if status.Limit > 0 {
		cmd.Printf("Limit:     %.4f (%.1f%% used)\n", status.Limit, status.Utilization)
	} else {
		cmd.Println("Limit:     not set")
	}
	cmd.Printf("Projected: %.4f over a full period\n", status.Projected)

	if !status.WithinBudget {
		cmd.Println("Budget exhausted.")
	}
	for _, alert := range status.Alerts {
		cmd.Printf("Alert: crossed %d%% of the monthly limit (%.4f of %.4f)\n",
			alert.Threshold, alert.Spend, alert.Limit)
	}
	return nil
}

func runBudgetSetLimit(cmd *cobra.Command, args []string) error {
	if budgetService == nil {
		return errors.New("budget service not configured")
	}

	limit, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid limit %q: %w", args[0], err)
	}

	if err := budgetService.SetLimit(cmd.Context(), limit); err != nil {
		return fmt.Errorf("set limit failed: %w", err)
	}

	// Persist so the limit survives this session.
	if settingsStore != nil {
		settings, err := settingsStore.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		settings.Budget.MonthlyLimit = limit
		if err := settingsStore.Save(settings); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
	}

	cmd.Printf("Monthly limit set to %.4f\n", limit)
	return nil
}

func runBudgetReset(cmd *cobra.Command, _ []string) error {
	if budgetService == nil {
		return errors.New("budget service not configured")
	}

	if err := budgetService.Reset(cmd.Context(), projectFlag); err != nil {
		return fmt.Errorf("budget reset failed: %w", err)
	}
	cmd.Println("Usage records cleared.")
	return nil
}
