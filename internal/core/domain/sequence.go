package domain

import "fmt"

// DefaultSteps is the number of years in the published MSW datasets.
const DefaultSteps = 7

// SequenceState is the selected year position shared by every layer.
type SequenceState struct {
	Index int `json:"index"`
	Steps int `json:"steps"`
}

// NewSequence returns a sequence at index 0. Non-positive steps fall back
// to DefaultSteps.
func NewSequence(steps int) SequenceState {
	if steps <= 0 {
		steps = DefaultSteps
	}
	return SequenceState{Index: 0, Steps: steps}
}

// Last is the highest valid index.
func (s SequenceState) Last() int {
	return s.Steps - 1
}

// Forward steps to the next year, wrapping to 0 past the last one.
func (s SequenceState) Forward() SequenceState {
	next := s.Index + 1
	if next > s.Last() {
		next = 0
	}
	s.Index = next
	return s
}

// Reverse steps to the previous year, wrapping to the last one before 0.
func (s SequenceState) Reverse() SequenceState {
	prev := s.Index - 1
	if prev < 0 {
		prev = s.Last()
	}
	s.Index = prev
	return s
}

// SetDirect jumps to index i.
func (s SequenceState) SetDirect(i int) (SequenceState, error) {
	if i < 0 || i > s.Last() {
		return s, fmt.Errorf("%w: %d not in [0,%d]", ErrIndexOutOfRange, i, s.Last())
	}
	s.Index = i
	return s, nil
}
