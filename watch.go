package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"investment-research/cleaner"
)

// watchlistFile accepts either a bare YAML list or a map with a tickers key.
type watchlistFile struct {
	Tickers []string `yaml:"tickers"`
}

func loadWatchlist(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []string
	if err := yaml.Unmarshal(b, &list); err == nil {
		return compact(list), nil
	}
	var wf watchlistFile
	if err := yaml.Unmarshal(b, &wf); err != nil {
		return nil, fmt.Errorf("parse watchlist %s: %w", path, err)
	}
	return compact(wf.Tickers), nil
}

func compact(tickers []string) []string {
	var out []string
	for _, t := range tickers {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

type watchRow struct {
	ticker string
	data   *cleaner.CleanDataset
	err    error
}

func watchCmd(cfgFile *string) *cobra.Command {
	var parallel int
	cmd := &cobra.Command{
		Use:   "watch <watchlist.yaml>",
		Short: "Score every ticker in a watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tickers, err := loadWatchlist(args[0])
			if err != nil {
				return err
			}
			if len(tickers) == 0 {
				return fmt.Errorf("watchlist %s is empty", args[0])
			}

			ctx := cmd.Context()
			a, err := loadApp(ctx, *cfgFile, false)
			if err != nil {
				return err
			}

			rows := make([]watchRow, len(tickers))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(parallel)
			for i, t := range tickers {
				g.Go(func() error {
					d, err := a.cleanTicker(gctx, t)
					rows[i] = watchRow{ticker: t, data: d, err: err}
					return nil
				})
			}
			_ = g.Wait()

			sort.SliceStable(rows, func(i, j int) bool {
				return overall(rows[i]) > overall(rows[j])
			})
			printWatchlist(rows)
			return nil
		},
	}
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 4, "tickers collected concurrently")
	return cmd
}

func overall(r watchRow) float64 {
	if r.data == nil {
		return -1
	}
	return r.data.InvestmentScores.OverallScore
}

func printWatchlist(rows []watchRow) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleColoredDark)
	tw.Style().Options.DrawBorder = false
	tw.AppendHeader(table.Row{"Ticker", "Company", "Price", "Score", "Grade", "Recommendation", "Confidence"})

	for _, r := range rows {
		if r.err != nil {
			tw.AppendRow(table.Row{r.ticker, text.Colors{text.FgRed}.Sprint(r.err.Error()), "", "", "", "", ""})
			continue
		}
		s := r.data.InvestmentScores
		tw.AppendRow(table.Row{
			r.data.Ticker,
			r.data.CompanyName,
			fmt.Sprintf("%.2f", r.data.FinancialMetrics.CurrentPrice),
			score(s.OverallScore),
			s.OverallGrade,
			colorRecommendation(s.Recommendation),
			string(s.ConfidenceLevel),
		})
	}
	tw.Render()
}
