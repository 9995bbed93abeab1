package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/jengzang/heatmap-backend-go/internal/heatmap"
)

// DefaultRanks are the percentiles reported when none are requested
var DefaultRanks = []int{50, 75, 90, 95, 99}

// ErrInvalidRank indicates a percentile rank outside 1-100
var ErrInvalidRank = errors.New("stats: percentile rank must be within 1-100")

// ValidateRanks checks every rank is within 1-100
func ValidateRanks(ranks []int) error {
	for _, r := range ranks {
		if r < 1 || r > 100 {
			return fmt.Errorf("%w: %d", ErrInvalidRank, r)
		}
	}
	return nil
}

// BucketPercentiles estimates percentiles of a histogram given as one count
// per bucket. The estimate for rank p is the lower bound of the first
// bucket at which the running count reaches round(total*p/100), at least
// one sample. An empty histogram yields zeros.
func BucketPercentiles(buckets []heatmap.Bucket, counts []int64, ranks []int) []int64 {
	results := make([]int64, len(ranks))

	n := len(buckets)
	if len(counts) < n {
		n = len(counts)
	}

	var total int64
	for _, c := range counts[:n] {
		total += c
	}
	if total <= 0 {
		return results
	}

	for i, p := range ranks {
		roof := max(int64(math.Round(float64(total)*float64(p)/100.0)), 1)
		var count int64
		for j := 0; j < n; j++ {
			count += counts[j]
			if count >= roof {
				results[i] = buckets[j].Min
				break
			}
		}
	}

	return results
}

// ColumnPercentiles is the percentile estimate of one heat map column
type ColumnPercentiles struct {
	ID     string  `json:"id"`
	Ranks  []int   `json:"ranks"`
	Values []int64 `json:"values"`
}

// HeatMapPercentiles estimates ranks for every column of hm, in column order
func HeatMapPercentiles(hm *heatmap.HeatMap, ranks []int) []ColumnPercentiles {
	buckets := hm.Buckets()
	columns := hm.Columns()

	out := make([]ColumnPercentiles, len(columns))
	for i, c := range columns {
		out[i] = ColumnPercentiles{
			ID:     c.ID,
			Ranks:  ranks,
			Values: BucketPercentiles(buckets, c.Values, ranks),
		}
	}
	return out
}
