package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/repetit/testflow-backend/internal/model"
)

func validCheckBody() map[string]interface{} {
	return map[string]interface{}{
		"allowed":         true,
		"minutes":         40,
		"close_questions": 10,
		"open_questions":  2,
		"test_name":       "Algebra Basics",
		"test_id":         "math-101",
		"start_time":      time.Now().Add(-time.Hour).Format(time.RFC3339),
		"end_time":        time.Now().Add(time.Hour).Format(time.RFC3339),
		"admin_id":        "adm-1",
		"is_ended":        false,
	}
}

func TestCheckTestSuccess(t *testing.T) {
	var gotUserID, gotTestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/check-test" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotUserID = r.URL.Query().Get("user_id")
		gotTestID = r.URL.Query().Get("test_id")
		json.NewEncoder(w).Encode(validCheckBody())
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
	desc, err := c.CheckTest(context.Background(), "u1", "math-101")
	if err != nil {
		t.Fatalf("CheckTest: %v", err)
	}
	if gotUserID != "u1" || gotTestID != "math-101" {
		t.Errorf("query user_id=%q test_id=%q", gotUserID, gotTestID)
	}
	if desc.TestName != "Algebra Basics" || desc.Minutes != 40 {
		t.Errorf("descriptor = %+v", desc)
	}
	if desc.TotalQuestions() != 12 {
		t.Errorf("TotalQuestions = %d, want 12", desc.TotalQuestions())
	}
}

func TestCheckTestNotAllowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"allowed": false,
			"error":   "code does not exist",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
	_, err := c.CheckTest(context.Background(), "u1", "bogus")

	var denied *NotAllowedError
	if !errors.As(err, &denied) {
		t.Fatalf("err = %v, want NotAllowedError", err)
	}
	if denied.Reason != "code does not exist" {
		t.Errorf("Reason = %q", denied.Reason)
	}
}

func TestCheckTestStructuralProblems(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(m map[string]interface{})
	}{
		{"zero minutes", func(m map[string]interface{}) { m["minutes"] = 0 }},
		{"negative minutes", func(m map[string]interface{}) { m["minutes"] = -5 }},
		{"empty name", func(m map[string]interface{}) { m["test_name"] = "" }},
		{"no questions", func(m map[string]interface{}) {
			m["close_questions"] = 0
			m["open_questions"] = 0
		}},
		{"negative questions", func(m map[string]interface{}) { m["close_questions"] = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := validCheckBody()
			tc.mutate(body)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(body)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
			_, err := c.CheckTest(context.Background(), "u1", "math-101")
			if !errors.Is(err, ErrInvalidResponse) {
				t.Errorf("err = %v, want ErrInvalidResponse", err)
			}
		})
	}
}

func TestCheckTestNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
	_, err := c.CheckTest(context.Background(), "u1", "math-101")
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("err = %v, want ErrInvalidResponse", err)
	}
}

func TestCheckTestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL, time.Second, zerolog.Nop())
	_, err := c.CheckTest(context.Background(), "u1", "math-101")
	if !errors.Is(err, ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
}

func TestSubmitTestSuccess(t *testing.T) {
	var got model.Submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/submit-test" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
	sub := &model.Submission{
		TestID:      "math-101",
		Username:    "Anna",
		Lastname:    "Karimova",
		City:        "Tashkent",
		UserID:      "u1",
		StartedAt:   "2026-08-30T10:00:00Z",
		CompletedAt: "2026-08-30T10:40:00Z",
		Answers:     []string{"A", "None", "x+1"},
	}
	if err := c.SubmitTest(context.Background(), sub); err != nil {
		t.Fatalf("SubmitTest: %v", err)
	}
	if got.Username != "Anna" || got.City != "Tashkent" {
		t.Errorf("decoded submission = %+v", got)
	}
	if len(got.Answers) != 3 || got.Answers[1] != "None" {
		t.Errorf("answers = %v", got.Answers)
	}
}

func TestSubmitTestNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
	err := c.SubmitTest(context.Background(), &model.Submission{})
	if !errors.Is(err, ErrSubmitFailed) {
		t.Errorf("err = %v, want ErrSubmitFailed", err)
	}
}

func TestSubmitTestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, time.Second, zerolog.Nop())
	err := c.SubmitTest(context.Background(), &model.Submission{})
	if !errors.Is(err, ErrSubmitFailed) {
		t.Errorf("err = %v, want ErrSubmitFailed", err)
	}
}
