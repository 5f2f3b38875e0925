package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/bikedash/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set bikedash configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "⚠ No config loaded, showing defaults")
		}
		fmt.Fprintf(out, "listen_addr: %s\n", c.ListenAddr)
		fmt.Fprintf(out, "read_timeout_sec: %d\n", c.ReadTimeoutSec)
		fmt.Fprintf(out, "write_timeout_sec: %d\n", c.WriteTimeoutSec)
		fmt.Fprintf(out, "shutdown_timeout_sec: %d\n", c.ShutdownTimeoutSec)
		if c.RateLimitRPS > 0 {
			fmt.Fprintf(out, "rate_limit_rps: %.3f\n", c.RateLimitRPS)
			fmt.Fprintf(out, "rate_limit_burst: %d\n", c.RateLimitBurst)
		} else {
			fmt.Fprintln(out, "rate_limit_rps: 0 (disabled)")
		}
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		fmt.Fprintf(out, "head_rows: %d\n", c.HeadRows)
		fmt.Fprintf(out, "chart_width_in: %.2f\n", c.ChartWidthIn)
		fmt.Fprintf(out, "chart_height_in: %.2f\n", c.ChartHeightIn)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Reload so that --debug and --log-level do not leak into the file.
		loaded, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		next := *loaded
		if err := next.Set(key, val); err != nil {
			return err
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
