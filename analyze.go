package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"investment-research/cleaner"
	"investment-research/report"
)

func analyzeCmd(cfgFile *string) *cobra.Command {
	var (
		asJSON    bool
		reportFmt string
	)
	cmd := &cobra.Command{
		Use:   "analyze <ticker>",
		Short: "Collect, clean and score a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, *cfgFile, false)
			if err != nil {
				return err
			}

			d, err := a.cleanTicker(ctx, args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(d)
			}
			printScores(d)

			if reportFmt == "" {
				return nil
			}
			format, err := report.ParseFormat(reportFmt)
			if err != nil {
				return err
			}
			doc, err := a.reports.Generate(a.agent.Analyze(ctx, d), format)
			if err != nil {
				return err
			}
			fmt.Printf("\nReport written to %s (%s)\n", doc.Path, doc.Format.FileType())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the cleaned dataset as JSON")
	cmd.Flags().StringVar(&reportFmt, "report", "", "also render a report (pdf or latex)")
	return cmd
}

func cleanCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clean <raw.json>",
		Short: "Clean a saved raw dataset and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *cfgFile, false)
			if err != nil {
				return err
			}
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var raw cleaner.RawDataset
			if err := json.Unmarshal(b, &raw); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			return writeJSON(a.cleaner.Process(&raw))
		},
	}
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printScores(d *cleaner.CleanDataset) {
	s := d.InvestmentScores
	fmt.Printf("%s  %s\n\n", d.Ticker, d.CompanyName)

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleColoredDark)
	tw.Style().Options.DrawBorder = false
	tw.AppendHeader(table.Row{"Component", "Score", "Grade"})
	tw.AppendRows([]table.Row{
		{"Financial health", score(s.FinancialHealthScore), s.FinancialGrade},
		{"Market sentiment", score(s.MarketSentimentScore), s.SentimentGrade},
		{"Competitive position", score(s.CompetitivePositionScore), s.CompetitiveGrade},
		{"Momentum", score(s.MomentumScore), ""},
	})
	tw.AppendFooter(table.Row{"Overall", score(s.OverallScore), s.OverallGrade})
	tw.Render()

	fmt.Printf("\nRecommendation: %s (%s confidence)\n", colorRecommendation(s.Recommendation), s.ConfidenceLevel)
	fmt.Printf("Data quality: %d/4 sources\n", d.DataQuality.Count())
}

func score(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func colorRecommendation(r cleaner.Recommendation) string {
	switch r {
	case cleaner.StrongBuy, cleaner.Buy:
		return text.Colors{text.FgGreen}.Sprint(string(r))
	case cleaner.Sell:
		return text.Colors{text.FgRed}.Sprint(string(r))
	default:
		return text.Colors{text.FgYellow}.Sprint(string(r))
	}
}
