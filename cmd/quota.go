package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show or reset the free export counter",
}

var quotaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show completed exports and free exports remaining",
	Args:  cobra.NoArgs,
	RunE:  runQuotaShow,
}

var quotaResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the export counter to zero",
	Args:  cobra.NoArgs,
	RunE:  runQuotaReset,
}

func init() {
	rootCmd.AddCommand(quotaCmd)
	quotaCmd.AddCommand(quotaShowCmd, quotaResetCmd)
}

func runQuotaShow(cmd *cobra.Command, args []string) error {
	guard, closeGuard, err := openGuard()
	if err != nil {
		return err
	}
	defer closeGuard()

	state, err := guard.State(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Backend:       %s\n", cfg.Quota.Backend)
	fmt.Printf("Exports:       %s\n", humanize.Comma(state.ExportCount))
	fmt.Printf("Free limit:    %d\n", state.Limit)
	fmt.Printf("Remaining:     %d\n", state.Remaining())
	fmt.Printf("Next export:   %s\n", state.Mode())
	return nil
}

func runQuotaReset(cmd *cobra.Command, args []string) error {
	guard, closeGuard, err := openGuard()
	if err != nil {
		return err
	}
	defer closeGuard()

	if err := guard.Reset(context.Background()); err != nil {
		return err
	}
	fmt.Printf("Export counter reset, %d free exports available\n", cfg.Quota.FreeExports)
	return nil
}
