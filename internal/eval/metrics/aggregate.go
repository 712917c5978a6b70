package metrics

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// EvaluationResult is the outcome for a single dataset item
type EvaluationResult struct {
	ID             string
	Title          string
	Author         string
	Variant        string
	Source         string
	MatchScore     float64
	Comparison     *Comparison
	ProcessingTime time.Duration
	Error          string
}

// AggregateResults summarizes a run
type AggregateResults struct {
	TotalRecords int
	SuccessCount int
	FailureCount int

	TitleAccuracy  FieldStats
	AuthorAccuracy FieldStats
	ISBNAccuracy   FieldStats

	// MatchedCount is the number of items resolved to a catalog record
	MatchedCount    int
	OverallAccuracy float64

	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration

	Results        []EvaluationResult
	EvaluationDate time.Time
}

// FieldStats counts match methods for one field
type FieldStats struct {
	ExactMatches  int
	FuzzyMatches  int
	NoMatches     int
	MissingFields int
	AverageScore  float64
	Scores        []float64
}

// Accuracy is the share of labelled items matched exactly or fuzzily
func (s FieldStats) Accuracy() float64 {
	n := s.ExactMatches + s.FuzzyMatches + s.NoMatches + s.MissingFields
	if n == 0 {
		return 0
	}
	return float64(s.ExactMatches+s.FuzzyMatches) / float64(n)
}

// AggregateEvaluationResults aggregates per-item results
func AggregateEvaluationResults(results []EvaluationResult) *AggregateResults {
	agg := &AggregateResults{
		TotalRecords:   len(results),
		Results:        results,
		EvaluationDate: time.Now(),
		TitleAccuracy:  FieldStats{Scores: []float64{}},
		AuthorAccuracy: FieldStats{Scores: []float64{}},
		ISBNAccuracy:   FieldStats{Scores: []float64{}},
	}

	totalOverallScore := 0.0
	var successDuration time.Duration

	for _, result := range results {
		agg.TotalProcessingTime += result.ProcessingTime

		if result.Error != "" {
			agg.FailureCount++
			continue
		}

		agg.SuccessCount++
		successDuration += result.ProcessingTime
		if result.Source != "" {
			agg.MatchedCount++
		}

		if result.Comparison == nil {
			continue
		}
		aggregateFieldStats(&agg.TitleAccuracy, result.Comparison.Title)
		aggregateFieldStats(&agg.AuthorAccuracy, result.Comparison.Author)
		aggregateFieldStats(&agg.ISBNAccuracy, result.Comparison.ISBN)
		totalOverallScore += result.Comparison.OverallScore
	}

	if agg.SuccessCount > 0 {
		agg.TitleAccuracy.AverageScore = calculateAverage(agg.TitleAccuracy.Scores)
		agg.AuthorAccuracy.AverageScore = calculateAverage(agg.AuthorAccuracy.Scores)
		agg.ISBNAccuracy.AverageScore = calculateAverage(agg.ISBNAccuracy.Scores)
		agg.OverallAccuracy = totalOverallScore / float64(agg.SuccessCount)
		agg.AverageProcessingTime = successDuration / time.Duration(agg.SuccessCount)
	}

	return agg
}

func aggregateFieldStats(stats *FieldStats, match FieldMatch) {
	if match.Method == MethodUnlabeled {
		return
	}
	stats.Scores = append(stats.Scores, match.Score)

	switch match.Method {
	case MethodExact:
		stats.ExactMatches++
	case MethodFuzzy:
		stats.FuzzyMatches++
	case MethodNoMatch:
		stats.NoMatches++
	case MethodMissing:
		stats.MissingFields++
	}
}

func calculateAverage(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, score := range scores {
		sum += score
	}
	return sum / float64(len(scores))
}

// PrintSummary writes a human-readable summary of the run
func (a *AggregateResults) PrintSummary(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	fmt.Fprintln(w, "BOOKID EVALUATION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Evaluation Date: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Total Records: %d\n", a.TotalRecords)
	if a.TotalRecords > 0 {
		fmt.Fprintf(w, "Successful: %d (%.1f%%)\n", a.SuccessCount, percent(a.SuccessCount, a.TotalRecords))
		fmt.Fprintf(w, "Failed: %d (%.1f%%)\n", a.FailureCount, percent(a.FailureCount, a.TotalRecords))
		fmt.Fprintf(w, "Catalog Matches: %d (%.1f%%)\n", a.MatchedCount, percent(a.MatchedCount, a.TotalRecords))
	}
	fmt.Fprintf(w, "Average Processing Time: %s\n", a.AverageProcessingTime)
	fmt.Fprintf(w, "Total Processing Time: %s\n", a.TotalProcessingTime)

	fmt.Fprintln(w, "\nFIELD-LEVEL ACCURACY")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	printFieldStats(w, "Title", a.TitleAccuracy)
	printFieldStats(w, "Author", a.AuthorAccuracy)
	printFieldStats(w, "ISBN", a.ISBNAccuracy)

	fmt.Fprintln(w, "\nOVERALL SCORE")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Overall Accuracy: %.2f%% (%.3f)\n", a.OverallAccuracy*100, a.OverallAccuracy)
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

func percent(n, total int) float64 {
	return float64(n) / float64(total) * 100
}

func printFieldStats(w io.Writer, fieldName string, stats FieldStats) {
	fmt.Fprintf(w, "\n%s:\n", fieldName)
	fmt.Fprintf(w, "  Accuracy: %.2f%%\n", stats.Accuracy()*100)
	fmt.Fprintf(w, "  Average Score: %.2f%% (%.3f)\n", stats.AverageScore*100, stats.AverageScore)
	fmt.Fprintf(w, "  Exact Matches: %d\n", stats.ExactMatches)
	fmt.Fprintf(w, "  Fuzzy Matches: %d\n", stats.FuzzyMatches)
	fmt.Fprintf(w, "  No Matches: %d\n", stats.NoMatches)
	fmt.Fprintf(w, "  Missing Fields: %d\n", stats.MissingFields)
}
