package summary

import (
	"fmt"

	"casesim/domain/model"

	"github.com/montanaflynn/stats"
)

// OutcomeSummary condenses the per-draw estimates for one outcome class so
// the dot-cloud view can overlay central tendency and spread.
type OutcomeSummary struct {
	Outcome model.Outcome `json:"outcome"`
	Mean    float64       `json:"mean"`
	Median  float64       `json:"median"`
	StdDev  float64       `json:"std_dev"`
	Q05     float64       `json:"q05"`
	Q95     float64       `json:"q95"`
}

// Summarize computes per-outcome summaries over a simulation ensemble, in
// outcome set order.
func Summarize(outcomes model.OutcomeSet, draws []model.ProbabilityVector) ([]OutcomeSummary, error) {
	if len(draws) == 0 {
		return nil, fmt.Errorf("cannot summarize an empty ensemble")
	}

	out := make([]OutcomeSummary, len(outcomes))
	series := make([]float64, len(draws))
	for i, o := range outcomes {
		for d, probs := range draws {
			if len(probs) != len(outcomes) {
				return nil, fmt.Errorf("draw %d has %d entries for %d outcomes", d, len(probs), len(outcomes))
			}
			series[d] = probs[i]
		}

		mean, err := stats.Mean(series)
		if err != nil {
			return nil, fmt.Errorf("outcome %q: %w", o, err)
		}
		median, err := stats.Median(series)
		if err != nil {
			return nil, fmt.Errorf("outcome %q: %w", o, err)
		}
		sd, err := stats.StandardDeviation(series)
		if err != nil {
			return nil, fmt.Errorf("outcome %q: %w", o, err)
		}
		q05, err := stats.Percentile(series, 5)
		if err != nil {
			// Percentile needs more than one observation; a single-draw
			// ensemble degenerates to the draw itself.
			q05 = series[0]
		}
		q95, err := stats.Percentile(series, 95)
		if err != nil {
			q95 = series[0]
		}

		out[i] = OutcomeSummary{
			Outcome: o,
			Mean:    mean,
			Median:  median,
			StdDev:  sd,
			Q05:     q05,
			Q95:     q95,
		}
	}
	return out, nil
}
