package answerset

import (
	"errors"
	"fmt"
)

// Sentinel marks a question slot that has not been answered. It is the
// literal the upstream expects in place of empty answers.
const Sentinel = "None"

// Options is the fixed alphabet for closed-question answers.
var Options = []string{"A", "B", "C", "D", "E", "F"}

var (
	ErrEmpty         = errors.New("answer set needs at least one question")
	ErrNegativeCount = errors.New("question counts must not be negative")
	ErrIndexRange    = errors.New("answer index out of range")
	ErrInvalidOption = errors.New("closed answers must be one of A-F")
	ErrLengthChange  = errors.New("restored slots do not match question counts")
)

// Set is a fixed-length, index-addressed collection of answer values.
// Indexes below the closed-question count accept only the option alphabet;
// the rest accept arbitrary text or math markup. The length never changes
// after construction.
type Set struct {
	closeCount int
	slots      []string
}

// New creates an all-sentinel set for close+open questions.
func New(closeCount, openCount int) (*Set, error) {
	if closeCount < 0 || openCount < 0 {
		return nil, ErrNegativeCount
	}
	total := closeCount + openCount
	if total < 1 {
		return nil, ErrEmpty
	}
	slots := make([]string, total)
	for i := range slots {
		slots[i] = Sentinel
	}
	return &Set{closeCount: closeCount, slots: slots}, nil
}

// Restore rebuilds a set from persisted slots, normalizing empties back to
// the sentinel. Used when a session is resumed from the store.
func Restore(closeCount, openCount int, slots []string) (*Set, error) {
	s, err := New(closeCount, openCount)
	if err != nil {
		return nil, err
	}
	if len(slots) != len(s.slots) {
		return nil, ErrLengthChange
	}
	for i, v := range slots {
		if err := s.Update(i, v); err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
	}
	return s, nil
}

// Len returns the fixed number of question slots.
func (s *Set) Len() int {
	return len(s.slots)
}

// CloseCount returns how many leading slots are closed questions.
func (s *Set) CloseCount() int {
	return s.closeCount
}

// Update replaces the value at index i. Empty input is treated as the
// unanswered sentinel. Closed slots only accept the option alphabet.
func (s *Set) Update(i int, value string) error {
	if i < 0 || i >= len(s.slots) {
		return fmt.Errorf("%w: %d of %d", ErrIndexRange, i, len(s.slots))
	}
	if value == "" {
		value = Sentinel
	}
	if i < s.closeCount && value != Sentinel && !validOption(value) {
		return fmt.Errorf("%w: %q", ErrInvalidOption, value)
	}
	s.slots[i] = value
	return nil
}

// Value returns the current value at index i (sentinel if unanswered).
func (s *Set) Value(i int) (string, error) {
	if i < 0 || i >= len(s.slots) {
		return "", fmt.Errorf("%w: %d of %d", ErrIndexRange, i, len(s.slots))
	}
	return s.slots[i], nil
}

// AnsweredCount returns how many slots hold a non-sentinel value.
func (s *Set) AnsweredCount() int {
	n := 0
	for _, v := range s.slots {
		if v != Sentinel && v != "" {
			n++
		}
	}
	return n
}

// UnansweredCount is surfaced so the consumer can confirm an incomplete
// manual submission.
func (s *Set) UnansweredCount() int {
	return len(s.slots) - s.AnsweredCount()
}

// SubmissionForm returns a copy of the sequence with every empty slot
// normalized to the sentinel literal, suitable for transmission.
func (s *Set) SubmissionForm() []string {
	out := make([]string, len(s.slots))
	for i, v := range s.slots {
		if v == "" {
			v = Sentinel
		}
		out[i] = v
	}
	return out
}

// Slots returns a defensive copy for persistence.
func (s *Set) Slots() []string {
	out := make([]string, len(s.slots))
	copy(out, s.slots)
	return out
}

func validOption(v string) bool {
	for _, o := range Options {
		if v == o {
			return true
		}
	}
	return false
}
