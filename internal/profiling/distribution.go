package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Summary holds the descriptive statistics of a numeric column.
type Summary struct {
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	Outliers int     `json:"outliers"`
	IsNormal bool    `json:"is_normal"`
	NormalP  float64 `json:"normal_p"`
}

// Summarize computes a Summary. It fails on empty input.
func Summarize(data []float64) (Summary, error) {
	var s Summary
	var err error

	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if len(data) > 1 {
		if s.StdDev, err = stats.StandardDeviationSample(data); err != nil {
			return s, err
		}
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	s.Q25, s.Q75 = s.Median, s.Median
	if len(data) > 1 {
		q, err := stats.Quartile(data)
		if err != nil {
			return s, err
		}
		s.Q25, s.Q75 = q.Q1, q.Q3
	}

	s.Skewness = skewness(data, s.Mean, s.StdDev)
	s.Kurtosis = kurtosis(data, s.Mean, s.StdDev)
	s.Outliers = countOutliers(data, s.Q25, s.Q75)
	s.IsNormal, s.NormalP = normality(len(data), s.Skewness, s.Kurtosis)
	return s, nil
}

// skewness is the adjusted Fisher-Pearson coefficient.
func skewness(data []float64, mean, sd float64) float64 {
	if len(data) < 3 || sd == 0 {
		return 0
	}
	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / sd
		sum += d * d * d
	}
	return sum / n * math.Sqrt(n*(n-1)) / (n - 2)
}

// kurtosis returns total (not excess) sample kurtosis.
func kurtosis(data []float64, mean, sd float64) float64 {
	if len(data) < 4 || sd == 0 {
		return 3
	}
	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / sd
		sum += d * d * d * d
	}
	g2 := sum/n - 3
	return ((n+1)*g2+6)*(n-1)/((n-2)*(n-3)) + 3
}

// normality is a Jarque-Bera test on the sample moments.
func normality(n int, skew, kurt float64) (bool, float64) {
	if n < 8 {
		return false, 1
	}
	jb := float64(n) / 6 * (skew*skew + (kurt-3)*(kurt-3)/4)
	p := 1 - distuv.ChiSquared{K: 2}.CDF(jb)
	return p > 0.05, p
}

// countOutliers counts values beyond 1.5 IQR of the quartiles.
func countOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lo, hi := q25-1.5*iqr, q75+1.5*iqr
	count := 0
	for _, x := range data {
		if x < lo || x > hi {
			count++
		}
	}
	return count
}
