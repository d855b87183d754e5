package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Oskru/study-smart/internal/timegrid"
)

// App plannerctl 命令行
type App struct {
	catalog *timegrid.Catalog
	root    *cobra.Command
}

// NewApp 基于网格目录创建命令行
func NewApp(catalog *timegrid.Catalog) *App {
	a := &App{catalog: catalog}

	a.root = &cobra.Command{
		Use:   "plannerctl",
		Short: "Offline helpers for the study-smart time grid",
		Long: `plannerctl runs the time-grid core against the configured catalog.

It compresses hour lists into ranges, expands ranges back into hours
and tallies exported preference records into a heat map.`,
		SilenceUsage: true,
	}

	a.root.AddCommand(a.catalogCmd())
	a.root.AddCommand(a.compressCmd())
	a.root.AddCommand(a.expandCmd())
	a.root.AddCommand(a.tallyCmd())

	return a
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

func (a *App) catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the configured days and hours",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "days:  %s\n", strings.Join(a.catalog.Days(), " "))
			fmt.Fprintf(out, "hours: %s\n", strings.Join(a.catalog.Hours(), " "))
		},
	}
}

func (a *App) compressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compress <hour>...",
		Short: "Compress hour labels into contiguous ranges",
		Long: `Compress hour labels into the fewest contiguous ranges.

Hours are sorted by catalog order first; unknown hours are rejected.

Example:
  plannerctl compress 09:00 10:00 11:00 14:00`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seen := make(map[string]bool, len(args))
			hours := make([]string, 0, len(args))
			for _, h := range args {
				if !a.catalog.HasHour(h) {
					return fmt.Errorf("unknown hour %q", h)
				}
				if !seen[h] {
					seen[h] = true
					hours = append(hours, h)
				}
			}
			ranges := a.catalog.Compress(a.catalog.SortHours(hours))
			return writeJSON(cmd.OutOrStdout(), ranges)
		},
	}
}

func (a *App) expandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expand <start-end>...",
		Short: "Expand ranges into hour labels",
		Long: `Expand inclusive ranges into every catalog hour they cover.

A single hour may be written without a dash.

Example:
  plannerctl expand 09:00-11:00 14:00`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ranges := make([]timegrid.TimeRange, 0, len(args))
			for _, arg := range args {
				r, err := parseRange(arg)
				if err != nil {
					return err
				}
				ranges = append(ranges, r)
			}
			return writeJSON(cmd.OutOrStdout(), a.catalog.Expand(ranges))
		},
	}
}

func (a *App) tallyCmd() *cobra.Command {
	var (
		category string
		owners   []string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "tally <records.json>",
		Short: "Tally vote records into a day x hour heat map",
		Long: `Tally a JSON array of vote records:

  [{"owner_id": "...", "category_key": "...", "day": "Monday", "hours": ["09:00"]}]

Each owner counts at most once per cell. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			var opts []timegrid.AggregateOption
			if cmd.Flags().Changed("category") {
				opts = append(opts, timegrid.WithCategory(category))
			}
			if len(owners) > 0 {
				opts = append(opts, timegrid.WithOwners(owners...))
			}
			tally := timegrid.Aggregate(records, opts...)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"days":   a.catalog.Days(),
					"hours":  a.catalog.Hours(),
					"matrix": tally.Matrix(a.catalog),
					"max":    tally.Max(),
				})
			}
			return a.printMatrix(cmd.OutOrStdout(), tally)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only count records with this category key (e.g. a course id)")
	cmd.Flags().StringSliceVar(&owners, "owner", nil, "only count these owners (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the matrix as JSON")

	return cmd
}

// printMatrix 小时为行、星期为列
func (a *App) printMatrix(w io.Writer, tally timegrid.Tally) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	days := a.catalog.Days()

	fmt.Fprint(tw, "\t")
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t", d)
	}
	fmt.Fprintln(tw)

	for _, h := range a.catalog.Hours() {
		fmt.Fprintf(tw, "%s\t", h)
		for _, d := range days {
			fmt.Fprintf(tw, "%d\t", tally.Get(d, h))
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "max: %d\n", tally.Max())
	return err
}

func parseRange(s string) (timegrid.TimeRange, error) {
	start, end, found := strings.Cut(s, "-")
	if !found {
		end = start
	}
	if start == "" || end == "" {
		return timegrid.TimeRange{}, fmt.Errorf("invalid range %q", s)
	}
	return timegrid.TimeRange{Start: start, End: end}, nil
}

func readRecords(stdin io.Reader, path string) ([]timegrid.VoteRecord, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening records: %w", err)
		}
		defer f.Close()
		r = f
	}

	var records []timegrid.VoteRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}
	return records, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
