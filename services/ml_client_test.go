package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var mlTestArguments = []ParticipantArgument{
	{Username: "alice", Text: "Homework teaches discipline and time management."},
	{Username: "bob", Text: "Homework crowds out rest and unstructured learning."},
}

func TestMLClientParsesServiceResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/finalize-debate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"scores": {
				"alice": {"sentiment": {"score": 72.5, "rating": "Good"}, "clarity": {"score": 81.0, "rating": "Good"}},
				"bob": {"sentiment": {"score": 60.1, "rating": "Fair"}, "clarity": {"score": 55.0, "rating": "Fair"}}
			},
			"totals": {"alice": 76.2, "bob": 57.4},
			"winner": "alice"
		}`))
	}))
	defer server.Close()

	client := NewMLClient(server.URL, time.Second)
	result, err := client.Analyze(context.Background(), "homework", mlTestArguments)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Source != "ml" {
		t.Errorf("source = %q, want ml", result.Source)
	}
	if result.Winner != "alice" {
		t.Errorf("winner = %q, want alice", result.Winner)
	}
	if got := result.Results["alice"].Total; got != 76.2 {
		t.Errorf("alice total = %.1f, want 76.2", got)
	}
	if got := result.Results["bob"].Scores["clarity"].Score; got != 55.0 {
		t.Errorf("bob clarity = %.1f, want 55.0", got)
	}
}

func TestMLClientNon200IsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewMLClient(server.URL, time.Second)
	_, err := client.Analyze(context.Background(), "homework", mlTestArguments)
	if !errors.Is(err, ErrTierUnavailable) {
		t.Errorf("expected ErrTierUnavailable, got %v", err)
	}
}

func TestMLClientMalformedBodyIsInvalidResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewMLClient(server.URL, time.Second)
	_, err := client.Analyze(context.Background(), "homework", mlTestArguments)
	if !errors.Is(err, ErrTierInvalidResponse) {
		t.Errorf("expected ErrTierInvalidResponse, got %v", err)
	}
}

func TestMLClientSlowServiceIsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewMLClient(server.URL, 50*time.Millisecond)
	_, err := client.Analyze(context.Background(), "homework", mlTestArguments)
	if !errors.Is(err, ErrTierTimeout) {
		t.Errorf("expected ErrTierTimeout, got %v", err)
	}
}

func TestMLClientUnconfiguredIsUnavailable(t *testing.T) {
	client := NewMLClient("", time.Second)
	_, err := client.Analyze(context.Background(), "homework", mlTestArguments)
	if !errors.Is(err, ErrTierUnavailable) {
		t.Errorf("expected ErrTierUnavailable, got %v", err)
	}
}
