package ordering

import "gonum.org/v1/gonum/stat"

// costSpread returns the mean and sample standard deviation of trial costs.
// The deviation is zero for fewer than two trials.
func costSpread(costs []float64) (mean, std float64) {
	switch len(costs) {
	case 0:
		return 0, 0
	case 1:
		return costs[0], 0
	}
	return stat.MeanStdDev(costs, nil)
}
