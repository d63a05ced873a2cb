package answerset

import (
	"errors"
	"testing"
)

func TestNewFillsWithSentinel(t *testing.T) {
	s, err := New(3, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Len() != 5 {
		t.Fatalf("Len = %d, want 5", s.Len())
	}
	for i := 0; i < s.Len(); i++ {
		v, err := s.Value(i)
		if err != nil {
			t.Fatalf("Value(%d): %v", i, err)
		}
		if v != Sentinel {
			t.Errorf("slot %d = %q, want %q", i, v, Sentinel)
		}
	}
	if s.AnsweredCount() != 0 {
		t.Errorf("AnsweredCount = %d, want 0", s.AnsweredCount())
	}
}

func TestNewRejectsBadCounts(t *testing.T) {
	if _, err := New(0, 0); !errors.Is(err, ErrEmpty) {
		t.Errorf("New(0,0) = %v, want ErrEmpty", err)
	}
	if _, err := New(-1, 3); !errors.Is(err, ErrNegativeCount) {
		t.Errorf("New(-1,3) = %v, want ErrNegativeCount", err)
	}
}

func TestUpdateClosedSlot(t *testing.T) {
	s, _ := New(2, 1)

	if err := s.Update(0, "C"); err != nil {
		t.Fatalf("Update closed with option: %v", err)
	}
	if err := s.Update(1, "hello"); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("Update closed with text = %v, want ErrInvalidOption", err)
	}
	if err := s.Update(1, "a"); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("lowercase option accepted: %v", err)
	}

	// Clearing back to unanswered is always allowed.
	if err := s.Update(0, ""); err != nil {
		t.Fatalf("clear closed slot: %v", err)
	}
	v, _ := s.Value(0)
	if v != Sentinel {
		t.Errorf("cleared slot = %q, want sentinel", v)
	}
}

func TestUpdateOpenSlotAcceptsFreeText(t *testing.T) {
	s, _ := New(1, 2)

	if err := s.Update(1, "x^2 + 1"); err != nil {
		t.Fatalf("open slot free text: %v", err)
	}
	if err := s.Update(2, "None of the above"); err != nil {
		t.Fatalf("open slot: %v", err)
	}
	if s.AnsweredCount() != 2 {
		t.Errorf("AnsweredCount = %d, want 2", s.AnsweredCount())
	}
	if s.UnansweredCount() != 1 {
		t.Errorf("UnansweredCount = %d, want 1", s.UnansweredCount())
	}
}

func TestUpdateIndexRange(t *testing.T) {
	s, _ := New(1, 1)
	if err := s.Update(-1, "A"); !errors.Is(err, ErrIndexRange) {
		t.Errorf("Update(-1) = %v, want ErrIndexRange", err)
	}
	if err := s.Update(2, "A"); !errors.Is(err, ErrIndexRange) {
		t.Errorf("Update(2) = %v, want ErrIndexRange", err)
	}
}

func TestSubmissionFormNormalizesAndCopies(t *testing.T) {
	s, _ := New(2, 1)
	s.Update(0, "B")

	form := s.SubmissionForm()
	want := []string{"B", Sentinel, Sentinel}
	for i, v := range form {
		if v != want[i] {
			t.Errorf("form[%d] = %q, want %q", i, v, want[i])
		}
	}

	// Mutating the copy must not leak back.
	form[0] = "Z"
	v, _ := s.Value(0)
	if v != "B" {
		t.Errorf("internal slot changed to %q", v)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	s, _ := New(2, 2)
	s.Update(0, "A")
	s.Update(2, "42")

	restored, err := Restore(2, 2, s.Slots())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.AnsweredCount() != 2 {
		t.Errorf("restored AnsweredCount = %d, want 2", restored.AnsweredCount())
	}
	v, _ := restored.Value(2)
	if v != "42" {
		t.Errorf("restored slot 2 = %q, want 42", v)
	}
}

func TestRestoreRejectsLengthMismatch(t *testing.T) {
	if _, err := Restore(2, 2, []string{"A", "B"}); !errors.Is(err, ErrLengthChange) {
		t.Errorf("Restore short = %v, want ErrLengthChange", err)
	}
}

func TestRestoreRejectsBadClosedValue(t *testing.T) {
	if _, err := Restore(1, 1, []string{"nope", "fine"}); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("Restore bad closed = %v, want ErrInvalidOption", err)
	}
}
