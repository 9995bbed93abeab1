package heatmap

import "encoding/json"

// Bucket is the value range [Min, Max). Max is ignored when Infinite is set.
type Bucket struct {
	Min      int64
	Max      int64
	Infinite bool
}

// NewBucket returns the bounded bucket [min, max).
func NewBucket(min, max int64) Bucket {
	return Bucket{Min: min, Max: max}
}

// NewInfiniteBucket returns the bucket [min, +inf).
func NewInfiniteBucket(min int64) Bucket {
	return Bucket{Min: min, Infinite: true}
}

// Contains reports whether v falls into the bucket.
func (b Bucket) Contains(v int64) bool {
	return v >= b.Min && (b.Infinite || v < b.Max)
}

type bucketJSON struct {
	Min         int64  `json:"min"`
	Max         *int64 `json:"max"`
	InfiniteMax bool   `json:"infiniteMax"`
}

// MarshalJSON renders an unbounded max as null.
func (b Bucket) MarshalJSON() ([]byte, error) {
	out := bucketJSON{Min: b.Min, InfiniteMax: b.Infinite}
	if !b.Infinite {
		max := b.Max
		out.Max = &max
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the form written by MarshalJSON.
func (b *Bucket) UnmarshalJSON(data []byte) error {
	var in bucketJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	b.Min = in.Min
	b.Infinite = in.InfiniteMax || in.Max == nil
	b.Max = 0
	if !b.Infinite {
		b.Max = *in.Max
	}
	return nil
}

// Column is the densified data of one row, one value per bucket.
type Column struct {
	ID     string  `json:"id"`
	Values []int64 `json:"values"`
}

// Row is the sparse data of one row as read from storage.
type Row interface {
	// Keys returns the row's keys. Order is irrelevant.
	Keys() []string
	HasKey(key string) bool
	Get(key string) int64
}

// Values is a pre-parsed sparse row.
type Values map[string]int64

// Keys implements Row.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	return keys
}

// HasKey implements Row.
func (v Values) HasKey(key string) bool {
	_, ok := v[key]
	return ok
}

// Get implements Row.
func (v Values) Get(key string) int64 {
	return v[key]
}
