// Package datatable implements the serialized sparse row format used by the
// metrics storage: an ordered string to int64 map written as
// "key,value|key,value".
package datatable

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	rowSeparator   = "|"
	valueSeparator = ","
)

// ErrMalformed indicates a serialized table that cannot be decoded.
var ErrMalformed = errors.New("datatable: malformed data")

// DataTable keeps keys in insertion order.
type DataTable struct {
	keys   []string
	values map[string]int64
}

// New returns an empty table.
func New() *DataTable {
	return &DataTable{values: make(map[string]int64)}
}

// Parse decodes s. The empty string is an empty table.
func Parse(s string) (*DataTable, error) {
	t := New()
	if s == "" {
		return t, nil
	}
	for _, seg := range strings.Split(s, rowSeparator) {
		key, raw, ok := strings.Cut(seg, valueSeparator)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: segment %q", ErrMalformed, seg)
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value of key %q: %v", ErrMalformed, key, err)
		}
		t.Put(key, v)
	}
	return t, nil
}

// Put sets key to value.
func (t *DataTable) Put(key string, value int64) {
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = value
}

// ValueAccumulation adds value to key.
func (t *DataTable) ValueAccumulation(key string, value int64) {
	t.Put(key, t.values[key]+value)
}

// Get returns the value of key, 0 if absent.
func (t *DataTable) Get(key string) int64 {
	return t.values[key]
}

func (t *DataTable) HasKey(key string) bool {
	_, ok := t.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (t *DataTable) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// SortedKeys returns the keys ordered by less.
func (t *DataTable) SortedKeys(less func(a, b string) bool) []string {
	out := t.Keys()
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (t *DataTable) Size() int { return len(t.keys) }

// SumOfValues returns the sum of all values.
func (t *DataTable) SumOfValues() int64 {
	var sum int64
	for _, v := range t.values {
		sum += v
	}
	return sum
}

// Append accumulates every entry of other into t.
func (t *DataTable) Append(other *DataTable) {
	for _, k := range other.keys {
		t.ValueAccumulation(k, other.values[k])
	}
}

// String serializes the table in insertion order.
func (t *DataTable) String() string {
	var b strings.Builder
	for i, k := range t.keys {
		if i > 0 {
			b.WriteString(rowSeparator)
		}
		b.WriteString(k)
		b.WriteString(valueSeparator)
		b.WriteString(strconv.FormatInt(t.values[k], 10))
	}
	return b.String()
}
