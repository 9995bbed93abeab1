package heatmap

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBucketKey indicates a row key that is not a base-10 integer.
	ErrInvalidBucketKey = errors.New("heatmap: invalid bucket key")
	// ErrAxisMismatch indicates a row whose keys do not fit the frozen axis.
	ErrAxisMismatch = errors.New("heatmap: row does not match bucket axis")
)

// KeyError reports the offending key of a failed parse.
type KeyError struct {
	Key string
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%v %q: %v", ErrInvalidBucketKey, e.Key, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalidBucketKey) hold for every KeyError.
func (e *KeyError) Is(target error) bool { return target == ErrInvalidBucketKey }
