package heatmap

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Option configures a HeatMap.
type Option func(*HeatMap)

// WithStrictAxis rejects rows whose largest key is not the lower bound of
// the last bucket.
func WithStrictAxis() Option {
	return func(h *HeatMap) { h.strict = true }
}

// HeatMap is the value distribution of a set of rows over shared buckets.
type HeatMap struct {
	buckets []Bucket
	// axisKeys[i] is the row key that opened buckets[i].
	axisKeys []string
	columns  []Column
	strict   bool
}

// New returns an empty heat map. Buckets materialize on the first
// BuildColumn call.
func New(opts ...Option) *HeatMap {
	h := &HeatMap{columns: make([]Column, 0, 10)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HasAxis reports whether the bucket axis has been built.
func (h *HeatMap) HasAxis() bool { return h.buckets != nil }

// Buckets returns a copy of the bucket axis, nil before the first column.
func (h *HeatMap) Buckets() []Bucket {
	if h.buckets == nil {
		return nil
	}
	out := make([]Bucket, len(h.buckets))
	copy(out, h.buckets)
	return out
}

// Columns returns a copy of the column list.
func (h *HeatMap) Columns() []Column {
	out := make([]Column, len(h.columns))
	copy(out, h.columns)
	return out
}

// BuildColumn densifies row against the bucket axis and appends the result
// as column id. Keys missing from row take defaultValue. On the first call
// the axis is derived from row's keys. On error the heat map is unchanged.
func (h *HeatMap) BuildColumn(id string, row Row, defaultValue int64) error {
	if h.buckets == nil {
		keys, err := sortKeys(row.Keys())
		if err != nil {
			return err
		}
		h.buildAxis(keys)
	} else if h.strict {
		if err := h.checkAxis(row); err != nil {
			return fmt.Errorf("column %q: %w", id, err)
		}
	}

	values := make([]int64, len(h.axisKeys))
	for i, key := range h.axisKeys {
		if row.HasKey(key) {
			values[i] = row.Get(key)
		} else {
			values[i] = defaultValue
		}
	}
	h.columns = append(h.columns, Column{ID: id, Values: values})
	return nil
}

// FixMissingColumns makes sure every id of ids has a column. An id without
// one gets an all-default column inserted at its index in ids. Presence is
// checked across all columns, so the final order only matches ids when the
// existing columns already follow it.
func (h *HeatMap) FixMissingColumns(ids []string, defaultValue int64) {
	for i, id := range ids {
		if h.hasColumn(id) {
			continue
		}
		h.insertColumn(i, h.missingColumn(id, defaultValue))
	}
}

func (h *HeatMap) hasColumn(id string) bool {
	for _, c := range h.columns {
		if c.ID == id {
			return true
		}
	}
	return false
}

// insertColumn places c at index i, or at the end when i is past it.
func (h *HeatMap) insertColumn(i int, c Column) {
	if i >= len(h.columns) {
		h.columns = append(h.columns, c)
		return
	}
	h.columns = append(h.columns, Column{})
	copy(h.columns[i+1:], h.columns[i:])
	h.columns[i] = c
}

func (h *HeatMap) missingColumn(id string, defaultValue int64) Column {
	values := make([]int64, len(h.buckets))
	for i := range values {
		values[i] = defaultValue
	}
	return Column{ID: id, Values: values}
}

func (h *HeatMap) buildAxis(keys []parsedKey) {
	h.buckets = make([]Bucket, 0, len(keys))
	h.axisKeys = make([]string, 0, len(keys))
	for i, k := range keys {
		if i == len(keys)-1 {
			h.buckets = append(h.buckets, NewInfiniteBucket(k.n))
		} else {
			h.buckets = append(h.buckets, NewBucket(k.n, keys[i+1].n))
		}
		h.axisKeys = append(h.axisKeys, k.raw)
	}
}

func (h *HeatMap) checkAxis(row Row) error {
	keys, err := sortKeys(row.Keys())
	if err != nil {
		return err
	}
	switch {
	case len(keys) == 0 && len(h.buckets) == 0:
		return nil
	case len(keys) == 0 || len(h.buckets) == 0:
		return fmt.Errorf("%w: %d keys against %d buckets", ErrAxisMismatch, len(keys), len(h.buckets))
	}
	last := h.buckets[len(h.buckets)-1].Min
	if max := keys[len(keys)-1].n; max != last {
		return fmt.Errorf("%w: largest key %d, last bucket starts at %d", ErrAxisMismatch, max, last)
	}
	return nil
}

type parsedKey struct {
	raw string
	n   int64
}

// sortKeys parses keys and sorts them numerically. Keys with the same
// numeric value collapse into the lexically smallest one.
func sortKeys(keys []string) ([]parsedKey, error) {
	parsed := make([]parsedKey, 0, len(keys))
	for _, k := range keys {
		n, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, &KeyError{Key: k, Err: err}
		}
		parsed = append(parsed, parsedKey{raw: k, n: n})
	}
	sort.Slice(parsed, func(i, j int) bool {
		if parsed[i].n != parsed[j].n {
			return parsed[i].n < parsed[j].n
		}
		return parsed[i].raw < parsed[j].raw
	})

	out := parsed[:0]
	for _, k := range parsed {
		if len(out) > 0 && out[len(out)-1].n == k.n {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

type heatMapJSON struct {
	Buckets []Bucket `json:"buckets"`
	Values  []Column `json:"values"`
}

// MarshalJSON renders the heat map for the presentation layer.
func (h *HeatMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(heatMapJSON{Buckets: h.buckets, Values: h.columns})
}
