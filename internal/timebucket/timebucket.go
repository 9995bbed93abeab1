// Package timebucket expands a query duration into the ordered list of
// storage time buckets covering it.
package timebucket

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Step is the granularity of a duration.
type Step string

const (
	Minute Step = "MINUTE"
	Hour   Step = "HOUR"
	Day    Step = "DAY"
)

var (
	// ErrUnknownStep indicates a step other than MINUTE, HOUR or DAY.
	ErrUnknownStep = errors.New("timebucket: unknown step")
	// ErrInvalidRange indicates an unparsable bound or end before start.
	ErrInvalidRange = errors.New("timebucket: invalid range")
	// ErrTooManyPoints indicates a range with more buckets than allowed.
	ErrTooManyPoints = errors.New("timebucket: too many points")
)

// ParseStep accepts a step name in any case.
func ParseStep(s string) (Step, error) {
	switch step := Step(strings.ToUpper(s)); step {
	case Minute, Hour, Day:
		return step, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStep, s)
}

// Layout is the format of query bounds for the step.
func (s Step) Layout() string {
	switch s {
	case Minute:
		return "2006-01-02 1504"
	case Hour:
		return "2006-01-02 15"
	default:
		return "2006-01-02"
	}
}

func (s Step) bucketLayout() string {
	switch s {
	case Minute:
		return "200601021504"
	case Hour:
		return "2006010215"
	default:
		return "20060102"
	}
}

func (s Step) next(t time.Time) time.Time {
	switch s {
	case Minute:
		return t.Add(time.Minute)
	case Hour:
		return t.Add(time.Hour)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Bucket formats t as the storage time bucket of the step, e.g. 202610151204.
func (s Step) Bucket(t time.Time) int64 {
	n, _ := strconv.ParseInt(t.Format(s.bucketLayout()), 10, 64)
	return n
}

// Duration is an inclusive range of time buckets.
type Duration struct {
	Start time.Time
	End   time.Time
	Step  Step
}

// ParseDuration parses start and end in the step's layout, in UTC.
func ParseDuration(start, end string, step Step) (Duration, error) {
	s, err := time.Parse(step.Layout(), start)
	if err != nil {
		return Duration{}, fmt.Errorf("%w: start %q: %v", ErrInvalidRange, start, err)
	}
	e, err := time.Parse(step.Layout(), end)
	if err != nil {
		return Duration{}, fmt.Errorf("%w: end %q: %v", ErrInvalidRange, end, err)
	}
	if e.Before(s) {
		return Duration{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidRange, end, start)
	}
	return Duration{Start: s, End: e, Step: step}, nil
}

// Buckets lists the time buckets from Start to End inclusive. It fails when
// there are more than maxPoints of them; maxPoints <= 0 means no limit.
func (d Duration) Buckets(maxPoints int) ([]int64, error) {
	var out []int64
	for t := d.Start; !t.After(d.End); t = d.Step.next(t) {
		if maxPoints > 0 && len(out) == maxPoints {
			return nil, fmt.Errorf("%w: more than %d %s buckets", ErrTooManyPoints, maxPoints, d.Step)
		}
		out = append(out, d.Step.Bucket(t))
	}
	return out, nil
}

// RowID is the storage id of entity's row at timeBucket.
func RowID(timeBucket int64, entity string) string {
	return strconv.FormatInt(timeBucket, 10) + "_" + entity
}

// RowIDs maps every time bucket to its row id, keeping order.
func RowIDs(buckets []int64, entity string) []string {
	ids := make([]string, len(buckets))
	for i, b := range buckets {
		ids[i] = RowID(b, entity)
	}
	return ids
}
