package pipeline

import "github.com/couchcryptid/location-mapper/internal/domain"

// Aggregate partitions a result sequence into success and failure sets
// and derives the batch report. It is a pure function of its input, so
// report and partitions can be recomputed at any time without drift.
func Aggregate(results []domain.GeocodeResult) (successes, failures []domain.GeocodeResult, report domain.BatchReport) {
	report = domain.BatchReport{
		Total:    len(results),
		Failures: make(map[domain.GeocodeStatus]int, len(domain.FailureStatuses)),
	}
	for _, status := range domain.FailureStatuses {
		report.Failures[status] = 0
	}

	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			successes = append(successes, r)
			report.Successes++
			continue
		}
		failures = append(failures, r)
		report.Failures[r.Status]++
	}
	return successes, failures, report
}
