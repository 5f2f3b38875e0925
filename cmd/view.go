package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/bikedash/internal/render"
	"github.com/KaramelBytes/bikedash/internal/utils"
	"github.com/KaramelBytes/bikedash/internal/views"
)

var (
	viewHead        int
	viewFormat      string
	viewChartsDir   string
	viewTablesDir   string
	viewTableFormat string
)

var viewCmd = &cobra.Command{
	Use:   "view <" + strings.Join(views.Slugs(), "|") + ">",
	Short: "Print a dashboard view, optionally saving its charts and tables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := views.Parse(args[0])
		if err != nil {
			return err
		}
		var tableFormat render.Format
		if viewTablesDir != "" {
			if tableFormat, err = render.ParseFormat(viewTableFormat); err != nil {
				return err
			}
		}
		c := effectiveConfig()
		log, err := newLogger(c)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		opt := views.Options{HeadRows: c.HeadRows}
		if cmd.Flags().Changed("head") {
			opt.HeadRows = viewHead
		}
		p, err := views.Build(v, datasetLoader(log), opt)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch strings.ToLower(viewFormat) {
		case "text", "":
			if err := render.Text(out, p); err != nil {
				return err
			}
		case "json":
			b, err := utils.PrettyJSON(p)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		default:
			return fmt.Errorf("unsupported --format: %s (use text|json)", viewFormat)
		}

		if viewChartsDir != "" {
			if err := writeCharts(cmd, p, viewChartsDir, c.ChartWidthIn, c.ChartHeightIn); err != nil {
				return err
			}
		}
		if viewTablesDir != "" {
			if err := writeTables(cmd, p, viewTablesDir, tableFormat); err != nil {
				return err
			}
		}
		return nil
	},
}

func writeCharts(cmd *cobra.Command, p *render.Page, dir string, w, h float64) error {
	if err := utils.EnsureDir(dir); err != nil {
		return err
	}
	for _, c := range p.Charts() {
		var buf bytes.Buffer
		if err := render.PNG(&buf, c, w, h); err != nil {
			if errors.Is(err, render.ErrNotPlottable) {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Skipped chart %s: not enough data\n", c.ID)
				continue
			}
			return err
		}
		path := filepath.Join(dir, c.ID+".png")
		if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", path)
	}
	return nil
}

func writeTables(cmd *cobra.Command, p *render.Page, dir string, format render.Format) error {
	if err := utils.EnsureDir(dir); err != nil {
		return err
	}
	for _, t := range p.Tables() {
		var buf bytes.Buffer
		if err := render.Export(&buf, t, format); err != nil {
			return err
		}
		path := filepath.Join(dir, t.ID+"."+string(format))
		if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", path)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().IntVar(&viewHead, "head", 5, "rows shown in table previews (overrides config head_rows)")
	viewCmd.Flags().StringVar(&viewFormat, "format", "text", "output format: text|json")
	viewCmd.Flags().StringVar(&viewChartsDir, "charts", "", "write every chart of the view as PNG into this directory")
	viewCmd.Flags().StringVar(&viewTablesDir, "tables", "", "write every table of the view into this directory")
	viewCmd.Flags().StringVar(&viewTableFormat, "table-format", "csv", "table file format: csv|xlsx|parquet")
}
