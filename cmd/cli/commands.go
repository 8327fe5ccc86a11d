package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"godesign/adapters/excel"
	"godesign/app"
	"godesign/internal/api"
	"godesign/internal/container"
	"godesign/internal/design"
	"godesign/internal/testkit"
	"godesign/ports"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// drawFlags are shared by draw and describe.
type drawFlags struct {
	n    int
	frac float64
	seed int64
}

func (f *drawFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.n, "n", 0, "Number of rows to sample (default: design setting, else all rows)")
	cmd.Flags().Float64Var(&f.frac, "frac", 0, "Fraction of rows to keep after --n (default: design setting)")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Random seed (default: design seed, then DESIGN_SEED, then random)")
}

// options builds DrawOptions from the flags the user actually set.
func (f *drawFlags) options(cmd *cobra.Command, d *design.Design) app.DrawOptions {
	var opts app.DrawOptions
	flags := cmd.Flags()
	if flags.Changed("n") || flags.Changed("frac") {
		req := app.DrawRequest{N: d.Draw.N, Frac: d.Draw.Frac}
		if flags.Changed("n") {
			n := f.n
			req.N = &n
		}
		if flags.Changed("frac") {
			frac := f.frac
			req.Frac = &frac
		}
		opts.Request = &req
	}
	if flags.Changed("seed") {
		seed := f.seed
		opts.Seed = &seed
	}
	return opts
}

func newDrawCmd(c *container.Container) *cobra.Command {
	var flags drawFlags
	var replicates int
	var format, out string
	var store bool

	cmd := &cobra.Command{
		Use:   "draw [design-file]",
		Short: "Draw synthetic data from a design",
		Long: `Draw one or more synthetic datasets from a YAML or JSON design file.

The population table (if any) is read, generated variables are drawn, the
potential outcome formulas are applied in order, and the result is
subsampled by --n then --frac.

Example: godesign draw tutoring.yaml --n 200 --frac 0.5 --seed 7 --out draws/tutoring.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := design.Load(args[0])
			if err != nil {
				return err
			}
			opts := flags.options(cmd, d)
			opts.Replicates = replicates
			opts.Store = store

			if format == "" {
				format = formatFromPath(out, c.Config.Draw.Output)
			}
			if err := checkOutput(format, out, replicates); err != nil {
				return err
			}

			records, err := c.Designs.Draw(cmd.Context(), d, opts)
			if err != nil {
				return err
			}
			return writeDraws(cmd, c.Writer, records, format, out)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&replicates, "replicates", 1, "Number of independent replicate draws")
	cmd.Flags().StringVar(&format, "format", "", "Output format: csv, json or xlsx (default: from --out, then DESIGN_OUTPUT)")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default: stdout); replicates get a _repN suffix")
	cmd.Flags().BoolVar(&store, "store", false, "Archive the draws in the configured database")

	return cmd
}

func formatFromPath(path, fallback string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	case ".xlsx":
		return "xlsx"
	}
	return fallback
}

func checkOutput(format, out string, replicates int) error {
	switch format {
	case "json":
		return nil
	case "csv", "xlsx":
	default:
		return fmt.Errorf("unknown output format %q (use csv, json or xlsx)", format)
	}
	if out == "" && format == "xlsx" {
		return fmt.Errorf("xlsx output needs --out")
	}
	if out == "" && replicates > 1 {
		return fmt.Errorf("%s output of several replicates needs --out", format)
	}
	return nil
}

func writeDraws(cmd *cobra.Command, writer ports.TableWriter, records []*ports.DrawRecord, format, out string) error {
	w := cmd.OutOrStdout()

	if format == "json" {
		views := make([]api.DrawView, len(records))
		for i, rec := range records {
			views[i] = api.NewDrawView(rec)
		}
		if out == "" {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(views)
		}
		data, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return err
		}
		return writeFile(out, data)
	}

	if out == "" {
		return excel.WriteCSV(w, records[0].Table)
	}
	for _, rec := range records {
		path := out
		if len(records) > 1 {
			path = replicatePath(out, rec.Replicate)
		}
		if err := writer.WriteTable(cmd.Context(), rec.Table, ensureExt(path, format)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "draw %s: %d rows -> %s\n", rec.ID, rec.Rows, ensureExt(path, format))
	}
	return nil
}

func replicatePath(path string, replicate int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_rep%d%s", strings.TrimSuffix(path, ext), replicate, ext)
}

func ensureExt(path, format string) string {
	if strings.EqualFold(filepath.Ext(path), "."+format) {
		return path
	}
	return path + "." + format
}

func newDescribeCmd(c *container.Container) *cobra.Command {
	var flags drawFlags
	var html bool
	var out string

	cmd := &cobra.Command{
		Use:   "describe [design-file]",
		Short: "Draw once and summarize every column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := design.Load(args[0])
			if err != nil {
				return err
			}
			profile, rec, err := c.Designs.Describe(cmd.Context(), d, flags.options(cmd, d))
			if err != nil {
				return err
			}

			title := fmt.Sprintf("%s (seed %d)", d.DisplayName(), rec.Seed)
			var report []byte
			if html {
				report = profile.HTML(title)
			} else {
				report = []byte(profile.Markdown(title))
			}
			if out != "" {
				return writeFile(out, report)
			}
			_, err = cmd.OutOrStdout().Write(report)
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&html, "html", false, "Render the report as a standalone HTML page")
	cmd.Flags().StringVar(&out, "out", "", "Report file (default: stdout)")

	return cmd
}

func newValidateCmd(c *container.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [design-file]",
		Short: "Check a design without writing any data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := design.Load(args[0])
			if err != nil {
				return err
			}
			if err := c.Designs.Validate(cmd.Context(), d); err != nil {
				return err
			}
			vars, err := c.Designs.Variables(cmd.Context(), d)
			if err != nil {
				return err
			}
			outcomes := d.Outcomes()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n  variables: %s\n  outcomes:  %d\n",
				d.DisplayName(), strings.Join(vars, ", "), len(outcomes))
			for _, o := range outcomes {
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", o)
			}
			return nil
		},
	}
}

func newHistoryCmd(c *container.Container) *cobra.Command {
	var designName string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived draws",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := c.Designs.ListDraws(cmd.Context(), designName, limit)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringVar(&designName, "design", "", "Only list draws of this design")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of draws to list")

	return cmd
}

func printHistory(w io.Writer, records []*ports.DrawRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "no archived draws")
		return err
	}
	for _, rec := range records {
		if _, err := fmt.Fprintf(w, "%s  %-20s rep=%d seed=%d rows=%d  %s\n",
			rec.ID, rec.Design, rec.Replicate, rec.Seed, rec.Rows, rec.CreatedAt.Format("2006-01-02 15:04:05")); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func newInitCmd() *cobra.Command {
	var students int
	var seed int64

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold an example design with a synthetic baseline table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			config := testkit.DefaultBaselineConfig()
			config.StudentCount = students
			config.Seed = seed

			path, err := testkit.Scaffold(cmd.Context(), dir, config)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\nTry: godesign draw %s\n", path, path)
			return nil
		},
	}

	cmd.Flags().IntVar(&students, "students", 200, "Rows in the baseline table")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the baseline table")

	return cmd
}
