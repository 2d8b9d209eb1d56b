package report

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"investment-research/llm"
)

var boldPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)

var texReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`%`, `\%`,
	`#`, `\#`,
	`^`, `\textasciicircum{}`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
)

// Escape makes s safe to place in LaTeX body text. Markdown bold spans
// become \textbf groups.
func Escape(s string) string {
	var b strings.Builder
	last := 0
	for _, m := range boldPattern.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(texReplacer.Replace(s[last:m[0]]))
		b.WriteString(`\textbf{`)
		b.WriteString(texReplacer.Replace(s[m[2]:m[3]]))
		b.WriteString(`}`)
		last = m[1]
	}
	b.WriteString(texReplacer.Replace(s[last:]))
	return b.String()
}

// paragraphs escapes text and keeps blank-line paragraph breaks.
func paragraphs(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Analysis not available."
	}
	parts := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n")
	for i, p := range parts {
		parts[i] = Escape(strings.TrimSpace(p))
	}
	return strings.Join(parts, "\n\n")
}

const latexSource = `\documentclass[11pt,a4paper]{article}
\usepackage[utf8]{inputenc}
\usepackage[T1]{fontenc}
\usepackage[margin=2.5cm]{geometry}
\usepackage{booktabs}
\usepackage{xcolor}
\usepackage{hyperref}
\usepackage{fancyhdr}

\definecolor{primary}{RGB}{20,50,110}
\pagestyle{fancy}
\fancyhf{}
\rhead{<< tex .Ticker >> Investment Research}
\lfoot{<< tex .Footer >>}
\rfoot{\thepage}

\title{\color{primary}\textbf{Investment Research Report}\\[0.5em]\large << tex .CompanyName >> (<< tex .Ticker >>)}
\date{<< tex .Date >>}

\begin{document}
\maketitle

\begin{center}
\begin{tabular}{ll}
\toprule
Overall Score & << printf "%.1f" .OverallScore >>/100 \\
Recommendation & \textbf{<< tex (print .Recommendation.Action) >>} \\
Current Price & \$<< printf "%.2f" .Recommendation.CurrentPrice >> \\
Price Target & \$<< printf "%.2f" .Recommendation.PriceTarget >> \\
Upside Potential & << printf "%.1f" .Recommendation.UpsidePotential >>\% \\
Confidence & << tex (title (print .Recommendation.ConfidenceLevel)) >> \\
\bottomrule
\end{tabular}
\end{center}

\tableofcontents
\newpage

\section{Executive Summary}
<< para .ExecutiveSummary.SummaryText >>

\section{Financial Analysis}
<< para .FinancialAnalysis.AnalysisText >>

\textbf{Valuation:} << tex (title .FinancialAnalysis.ValuationAssessment) >>.
\textbf{Risk Level:} << tex (title .FinancialAnalysis.RiskLevel) >>.
\textbf{Momentum:} << tex (title .FinancialAnalysis.MomentumTrend) >>.

\section{Market Sentiment}
<< para .SentimentAnalysis.AnalysisText >>

\textbf{Media Attention:} << printf "%.1f" .SentimentAnalysis.MediaAttentionScore >>/100.
\textbf{Coverage:} << tex (title .SentimentAnalysis.CoverageQuality) >>.
<<- if .SentimentAnalysis.RecentHeadlines >>

\begin{itemize}
<<- range .SentimentAnalysis.RecentHeadlines >>
\item << tex . >>
<<- end >>
\end{itemize}
<<- end >>

\section{Competitive Analysis}
<< para .CompetitiveAnalysis.AnalysisText >>

\textbf{Competitive Strength:} << tex (title .CompetitiveAnalysis.CompetitiveStrength) >>.
\textbf{Market Position:} << tex (title .CompetitiveAnalysis.MarketPosition) >>.

\section{Investment Thesis}
<< para .InvestmentThesis.ThesisText >>

\textbf{Investment Appeal:} << tex (title .InvestmentThesis.InvestmentAppeal) >>.

\section{Risk Assessment}
<< para .RiskAssessment.RiskText >>

\textbf{Overall Risk Level:} << tex (upper .RiskAssessment.OverallRiskLevel) >>.

\section{Investment Recommendation}
<< para .Recommendation.RecommendationText >>

\textbf{Recommendation:} << tex (print .Recommendation.Action) >>.
\textbf{Timeline:} << tex .Recommendation.Timeline >>.

\appendix
\section{Key Metrics}
\begin{tabular}{lr}
\toprule
Metric & Value \\
\midrule
P/E Ratio & << printf "%.2f" .FinancialAnalysis.KeyMetrics.PERatio >> \\
Volatility & << printf "%.2f" .FinancialAnalysis.KeyMetrics.Volatility >>\% \\
Momentum Score & << printf "%.1f" .FinancialAnalysis.KeyMetrics.MomentumScore >> \\
Market Cap & \$<< printf "%.1f" .FinancialAnalysis.KeyMetrics.MarketCapBillions >>B \\
\bottomrule
\end{tabular}

\vfill
\begin{center}\small\textit{<< tex .Footer >>. Model: << tex .ModelUsed >>.}\end{center}
\end{document}
`

var latexTemplate = template.Must(template.New("report.tex").
	Delims("<<", ">>").
	Funcs(template.FuncMap{
		"tex":   Escape,
		"para":  paragraphs,
		"title": TitleCase,
		"upper": strings.ToUpper,
	}).
	Parse(latexSource))

// LaTeXRenderer emits a standalone .tex document.
type LaTeXRenderer struct{}

func NewLaTeXRenderer() *LaTeXRenderer { return &LaTeXRenderer{} }

func (LaTeXRenderer) Format() Format { return FormatLaTeX }

func (LaTeXRenderer) Render(a *llm.Analysis) ([]byte, error) {
	data := struct {
		*llm.Analysis
		Date   string
		Footer string
	}{a, datePart(a.AnalysisTimestamp), footerText}

	var buf bytes.Buffer
	if err := latexTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute latex template: %w", err)
	}
	return buf.Bytes(), nil
}
