package domain

import (
	"errors"
	"fmt"
)

var (
	ErrIndexOutOfRange       = errors.New("sequence index out of range")
	ErrDatasetNotFound       = errors.New("dataset not found")
	ErrNoFeatures            = errors.New("dataset has no features")
	ErrNoAttributes          = errors.New("dataset has no year attributes")
	ErrMissingAttributeValue = errors.New("feature has no value for attribute")
	ErrAtlasNotLoaded        = errors.New("atlas has no datasets loaded")
	ErrLayerNotFound         = errors.New("layer not found")
)

// LoadFailure reports that a dataset could not be loaded from its source.
type LoadFailure struct {
	Dataset string
	Source  string
	Err     error
}

func (e *LoadFailure) Error() string {
	return fmt.Sprintf("load dataset %s from %s: %v", e.Dataset, e.Source, e.Err)
}

func (e *LoadFailure) Unwrap() error {
	return e.Err
}
