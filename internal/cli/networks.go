package cli

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wiyan17/Notifwallet-bot/internal/core/config"
)

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "Show the networks monitored at startup",
	Run:   runNetworks,
}

func init() {
	rootCmd.AddCommand(networksCmd)
}

func runNetworks(cmd *cobra.Command, args []string) {
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "NETWORK\tNAME\tRPC\tEXPLORER")
	for _, n := range cfg.StartupNetworks() {
		explorer := n.ExplorerTxPrefix
		if explorer == "" {
			explorer = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.Label(), n.Name, n.RPCURL, explorer)
	}
	_ = w.Flush()
}
