package cleaner

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	maxKeptArticles  = 10
	maxTopSources    = 3
	summaryTitles    = 3
	defaultRelevance = 0.5
)

// CleanNewsData normalizes articles and summarizes coverage.
func CleanNewsData(raw *RawNewsData, ticker string) (NewsSentiment, []string) {
	if raw == nil || len(raw.Articles) == 0 {
		return EmptyNewsSentiment(), []string{fmt.Sprintf("No news data available for %s", ticker)}
	}

	articles := make([]Article, 0, len(raw.Articles))
	counts := make(map[string]int)
	var order []string
	var relevanceSum float64

	for _, a := range raw.Articles {
		relevance := defaultRelevance
		if a.RelevanceScore != nil {
			relevance = SafeFloat(a.RelevanceScore, 0)
		}
		clean := Article{
			Title:          CleanText(a.Title),
			Description:    CleanText(a.Description),
			Source:         optionalText(a.Source, unknownText),
			PublishedAt:    optionalText(a.PublishedAt, ""),
			RelevanceScore: relevance,
			URL:            optionalText(a.URL, ""),
		}
		articles = append(articles, clean)
		relevanceSum += relevance
		if _, seen := counts[clean.Source]; !seen {
			order = append(order, clean.Source)
		}
		counts[clean.Source]++
	}

	n := len(articles)
	avg := relevanceSum / float64(n)

	titles := make([]string, 0, summaryTitles)
	for _, a := range articles {
		if len(titles) == summaryTitles {
			break
		}
		titles = append(titles, a.Title)
	}

	kept := articles
	if len(kept) > maxKeptArticles {
		kept = kept[:maxKeptArticles]
	}

	news := NewsSentiment{
		TotalArticles:       n,
		Articles:            kept,
		AverageRelevance:    Round(avg, 3),
		NewsCoverage:        categorizeCoverage(n),
		TopSources:          topSources(order, counts, maxTopSources),
		SourceDiversity:     len(counts),
		RecentNewsSummary:   strings.Join(titles, "; "),
		NewsFreshness:       "recent",
		MediaAttentionScore: Round(math.Min(float64(n)*5, 50)+avg*50, 1),
	}

	return news, []string{fmt.Sprintf("INFO: News data cleaned: %d articles, avg relevance %.2f", n, avg)}
}

func categorizeCoverage(n int) NewsCoverage {
	switch {
	case n >= 10:
		return CoverageHigh
	case n >= 5:
		return CoverageMedium
	case n >= 1:
		return CoverageLow
	default:
		return CoverageNone
	}
}

// topSources ranks sources by count; ties keep first-seen order.
func topSources(order []string, counts map[string]int, limit int) []string {
	ranked := append([]string(nil), order...)
	sort.SliceStable(ranked, func(i, j int) bool { return counts[ranked[i]] > counts[ranked[j]] })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
