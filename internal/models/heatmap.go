package models

// HeatMapCondition represents the query parameters of a heat map read
type HeatMapCondition struct {
	Metric  string `form:"metric" binding:"required"`
	Entity  string `form:"entity" binding:"required"`
	Start   string `form:"start" binding:"required"` // Layout depends on step, e.g. "2026-10-15 1200" for MINUTE
	End     string `form:"end" binding:"required"`
	Step    string `form:"step"`    // MINUTE, HOUR, DAY
	Default int64  `form:"default"` // Value for buckets a row has no data for
}

// MetricRow is one stored row of bucketed samples
type MetricRow struct {
	ID         string `json:"id"`
	Metric     string `json:"metric" binding:"required"`
	Entity     string `json:"entity" binding:"required"`
	TimeBucket int64  `json:"timeBucket" binding:"required"`
	Dataset    string `json:"dataset"`         // Serialized data table "key,value|key,value"
	Merge      bool   `json:"merge,omitempty"` // Accumulate into an existing row instead of replacing it
}

// PercentileCondition represents the query parameters of a percentile read
type PercentileCondition struct {
	HeatMapCondition
	Ranks []int `form:"ranks"` // e.g. ranks=50&ranks=99, defaults to 50,75,90,95,99
}
