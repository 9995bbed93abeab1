package heatmap_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/jengzang/heatmap-backend-go/internal/heatmap"
)

type HeatMapSuite struct {
	suite.Suite
	hm *heatmap.HeatMap
}

func (s *HeatMapSuite) SetupTest() {
	s.hm = heatmap.New()
}

func (s *HeatMapSuite) ids() []string {
	var out []string
	for _, c := range s.hm.Columns() {
		out = append(out, c.ID)
	}
	return out
}

// TestBucketDerivation: keys {0,5,20} => [0,5) [5,20) [20,+inf).
func (s *HeatMapSuite) TestBucketDerivation() {
	err := s.hm.BuildColumn("r1", heatmap.Values{"20": 1, "0": 2, "5": 3}, 0)
	require.NoError(s.T(), err)
	require.Equal(s.T(), []heatmap.Bucket{
		heatmap.NewBucket(0, 5),
		heatmap.NewBucket(5, 20),
		heatmap.NewInfiniteBucket(20),
	}, s.hm.Buckets())
}

// TestNumericOrder: "10" sorts after "2".
func (s *HeatMapSuite) TestNumericOrder() {
	require.NoError(s.T(), s.hm.BuildColumn("r1", heatmap.Values{"10": 1, "2": 1}, 0))
	require.Equal(s.T(), []heatmap.Bucket{
		heatmap.NewBucket(2, 10),
		heatmap.NewInfiniteBucket(10),
	}, s.hm.Buckets())
}

func (s *HeatMapSuite) TestNegativeKeys() {
	require.NoError(s.T(), s.hm.BuildColumn("r1", heatmap.Values{"-5": 1, "0": 2, "-10": 3}, 0))
	require.Equal(s.T(), []heatmap.Bucket{
		heatmap.NewBucket(-10, -5),
		heatmap.NewBucket(-5, 0),
		heatmap.NewInfiniteBucket(0),
	}, s.hm.Buckets())
	require.Equal(s.T(), []int64{3, 1, 2}, s.hm.Columns()[0].Values)
}

// TestDensifyWithDefaults: axis from {0,5,20}, row {0:3,20:7} => [3,0,7].
func (s *HeatMapSuite) TestDensifyWithDefaults() {
	require.NoError(s.T(), s.hm.BuildColumn("r1", heatmap.Values{"0": 1, "5": 1, "20": 1}, 0))
	require.NoError(s.T(), s.hm.BuildColumn("r2", heatmap.Values{"0": 3, "20": 7}, 0))

	cols := s.hm.Columns()
	require.Len(s.T(), cols, 2)
	require.Equal(s.T(), "r2", cols[1].ID)
	require.Equal(s.T(), []int64{3, 0, 7}, cols[1].Values)
}

func (s *HeatMapSuite) TestDefaultValueIsPerCall() {
	require.NoError(s.T(), s.hm.BuildColumn("r1", heatmap.Values{"0": 1, "5": 1}, 0))
	require.NoError(s.T(), s.hm.BuildColumn("r2", heatmap.Values{"5": 4}, -1))
	require.NoError(s.T(), s.hm.BuildColumn("r3", heatmap.Values{"0": 4}, 9))

	cols := s.hm.Columns()
	require.Equal(s.T(), []int64{-1, 4}, cols[1].Values)
	require.Equal(s.T(), []int64{4, 9}, cols[2].Values)
}

// TestAxisFrozen: a later row with other keys leaves buckets alone; its extra
// keys are dropped and its missing ones take the default.
func (s *HeatMapSuite) TestAxisFrozen() {
	require.NoError(s.T(), s.hm.BuildColumn("r1", heatmap.Values{"0": 1, "5": 2, "20": 3}, 0))
	before := s.hm.Buckets()

	require.NoError(s.T(), s.hm.BuildColumn("r2", heatmap.Values{"5": 8, "7": 9, "100": 10}, -1))

	require.Equal(s.T(), before, s.hm.Buckets())
	col := s.hm.Columns()[1]
	require.Len(s.T(), col.Values, len(before))
	require.Equal(s.T(), []int64{-1, 8, -1}, col.Values)
}

func (s *HeatMapSuite) TestInvalidKeyOnFirstRow() {
	err := s.hm.BuildColumn("r1", heatmap.Values{"0": 1, "abc": 2}, 0)
	require.Error(s.T(), err)
	require.True(s.T(), errors.Is(err, heatmap.ErrInvalidBucketKey))

	var ke *heatmap.KeyError
	require.True(s.T(), errors.As(err, &ke))
	require.Equal(s.T(), "abc", ke.Key)

	require.False(s.T(), s.hm.HasAxis(), "failed build must not create buckets")
	require.Empty(s.T(), s.hm.Columns(), "failed build must not append a column")
}

// TestInvalidKeyAfterAxis: later rows are only looked up, never parsed.
func (s *HeatMapSuite) TestInvalidKeyAfterAxis() {
	require.NoError(s.T(), s.hm.BuildColumn("r1", heatmap.Values{"0": 1}, 0))
	require.NoError(s.T(), s.hm.BuildColumn("r2", heatmap.Values{"x": 1}, 0))
	require.Equal(s.T(), []int64{0}, s.hm.Columns()[1].Values)
}

func (s *HeatMapSuite) TestDuplicateNumericKeys() {
	require.NoError(s.T(), s.hm.BuildColumn("r1", heatmap.Values{"5": 1, "05": 2, "9": 3}, 0))
	require.Equal(s.T(), []heatmap.Bucket{
		heatmap.NewBucket(5, 9),
		heatmap.NewInfiniteBucket(9),
	}, s.hm.Buckets())
	require.Equal(s.T(), []int64{2, 3}, s.hm.Columns()[0].Values, `"05" sorts before "5"`)
}

func (s *HeatMapSuite) TestEmptyFirstRow() {
	require.NoError(s.T(), s.hm.BuildColumn("r1", heatmap.Values{}, 0))
	require.True(s.T(), s.hm.HasAxis())
	require.Empty(s.T(), s.hm.Buckets())
	require.NoError(s.T(), s.hm.BuildColumn("r2", heatmap.Values{"1": 1}, 0))
	require.Empty(s.T(), s.hm.Columns()[1].Values)
}

// TestGapFillInsertsAtPosition: a and c exist, b is inserted with defaults.
func (s *HeatMapSuite) TestGapFillInsertsAtPosition() {
	require.NoError(s.T(), s.hm.BuildColumn("a", heatmap.Values{"0": 1, "5": 2}, 0))
	require.NoError(s.T(), s.hm.BuildColumn("c", heatmap.Values{"0": 3, "5": 4}, 0))

	s.hm.FixMissingColumns([]string{"a", "b", "c"}, 0)

	require.Equal(s.T(), []string{"a", "b", "c"}, s.ids())
	require.Equal(s.T(), []int64{0, 0}, s.hm.Columns()[1].Values)
}

func (s *HeatMapSuite) TestGapFillLeading() {
	require.NoError(s.T(), s.hm.BuildColumn("c", heatmap.Values{"1": 3}, 0))
	s.hm.FixMissingColumns([]string{"a", "b", "c", "d"}, 7)

	require.Equal(s.T(), []string{"a", "b", "c", "d"}, s.ids())
	cols := s.hm.Columns()
	require.Equal(s.T(), []int64{7}, cols[0].Values)
	require.Equal(s.T(), []int64{3}, cols[2].Values)
	require.Equal(s.T(), []int64{7}, cols[3].Values)
}

// TestGapFillSubsetIsNoop: already present ids change nothing.
func (s *HeatMapSuite) TestGapFillSubsetIsNoop() {
	require.NoError(s.T(), s.hm.BuildColumn("a", heatmap.Values{"0": 1, "5": 2}, 0))
	require.NoError(s.T(), s.hm.BuildColumn("b", heatmap.Values{"0": 3}, 0))
	before := s.hm.Columns()

	s.hm.FixMissingColumns([]string{"b"}, 9)
	s.hm.FixMissingColumns([]string{"a", "b"}, 9)

	require.Equal(s.T(), before, s.hm.Columns())
}

// TestGapFillKeepsOutOfOrderQuirk: presence is global, insertion is by index,
// so columns not already in the expected order stay out of order.
func (s *HeatMapSuite) TestGapFillKeepsOutOfOrderQuirk() {
	require.NoError(s.T(), s.hm.BuildColumn("c", heatmap.Values{"0": 1}, 0))
	require.NoError(s.T(), s.hm.BuildColumn("a", heatmap.Values{"0": 2}, 0))

	s.hm.FixMissingColumns([]string{"a", "b", "c"}, 0)

	require.Equal(s.T(), []string{"c", "b", "a"}, s.ids())
}

func (s *HeatMapSuite) TestGapFillIndexPastEnd() {
	require.NoError(s.T(), s.hm.BuildColumn("a", heatmap.Values{"0": 1}, 0))
	s.hm.FixMissingColumns([]string{"a", "a", "b"}, 0)
	require.Equal(s.T(), []string{"a", "b"}, s.ids())
}

// TestGapFillWithoutAxis: no buckets yields zero-length filler columns.
func (s *HeatMapSuite) TestGapFillWithoutAxis() {
	s.hm.FixMissingColumns([]string{"a", "b"}, 5)

	require.False(s.T(), s.hm.HasAxis())
	require.Nil(s.T(), s.hm.Buckets())
	cols := s.hm.Columns()
	require.Len(s.T(), cols, 2)
	require.Empty(s.T(), cols[0].Values)
	require.Empty(s.T(), cols[1].Values)
}

func (s *HeatMapSuite) TestColumnsAreCopies() {
	require.NoError(s.T(), s.hm.BuildColumn("a", heatmap.Values{"0": 1}, 0))
	cols := s.hm.Columns()
	cols[0] = heatmap.Column{ID: "z"}
	require.Equal(s.T(), "a", s.hm.Columns()[0].ID)
}

func (s *HeatMapSuite) TestMarshalJSON() {
	require.NoError(s.T(), s.hm.BuildColumn("r", heatmap.Values{"0": 1, "5": 2}, 0))
	data, err := json.Marshal(s.hm)
	require.NoError(s.T(), err)
	require.JSONEq(s.T(), `{
		"buckets": [
			{"min": 0, "max": 5, "infiniteMax": false},
			{"min": 5, "max": null, "infiniteMax": true}
		],
		"values": [{"id": "r", "values": [1, 2]}]
	}`, string(data))
}

func TestHeatMapSuite(t *testing.T) {
	suite.Run(t, new(HeatMapSuite))
}

func TestStrictAxis(t *testing.T) {
	hm := heatmap.New(heatmap.WithStrictAxis())
	require.NoError(t, hm.BuildColumn("r1", heatmap.Values{"0": 1, "5": 2, "20": 3}, 0))

	// Same upper key, missing middle key: accepted.
	require.NoError(t, hm.BuildColumn("r2", heatmap.Values{"0": 1, "20": 3}, 0))

	err := hm.BuildColumn("r3", heatmap.Values{"0": 1, "50": 3}, 0)
	require.ErrorIs(t, err, heatmap.ErrAxisMismatch)

	err = hm.BuildColumn("r4", heatmap.Values{"0": 1}, 0)
	require.ErrorIs(t, err, heatmap.ErrAxisMismatch)

	err = hm.BuildColumn("r5", heatmap.Values{"zz": 1}, 0)
	require.ErrorIs(t, err, heatmap.ErrInvalidBucketKey)

	require.Len(t, hm.Columns(), 2, "rejected rows must not be appended")
}

func TestBucketContains(t *testing.T) {
	b := heatmap.NewBucket(5, 20)
	require.True(t, b.Contains(5))
	require.True(t, b.Contains(19))
	require.False(t, b.Contains(20))
	require.False(t, b.Contains(4))

	inf := heatmap.NewInfiniteBucket(20)
	require.True(t, inf.Contains(1<<40))
	require.False(t, inf.Contains(19))
}

func TestBucketUnmarshalJSON(t *testing.T) {
	var buckets []heatmap.Bucket
	err := json.Unmarshal([]byte(`[{"min":0,"max":5,"infiniteMax":false},{"min":5,"max":null,"infiniteMax":true}]`), &buckets)
	require.NoError(t, err)
	require.Equal(t, []heatmap.Bucket{heatmap.NewBucket(0, 5), heatmap.NewInfiniteBucket(5)}, buckets)
}
