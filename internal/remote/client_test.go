package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"family-ledger-sync-go/internal/models"
	"family-ledger-sync-go/internal/store"
)

func setupClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(models.RemoteConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(models.RemoteConfig{}); err == nil {
		t.Error("Expected error for missing BaseURL")
	}
}

func TestLoadStateSuccess(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/v1/families/fam-1/state" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"profiles":[{"id":"p1","name":"Kid"}],"language":"nl","updatedAt":"2025-01-10T10:00:00Z"}`))
	})

	state, err := client.LoadState(context.Background(), "fam-1")
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if state == nil || state.Language != "nl" {
		t.Fatal("Expected the decoded snapshot")
	}
	p := state.FindProfile("p1")
	if p == nil {
		t.Fatal("Profile missing from decoded snapshot")
	}
	if p.History == nil || p.Goals == nil {
		t.Error("Expected the decoded snapshot normalized")
	}
}

func TestLoadStateNotFoundMeansNoSnapshot(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	state, err := client.LoadState(context.Background(), "fam-1")
	if err != nil {
		t.Fatalf("A 404 must not be an error: %v", err)
	}
	if state != nil {
		t.Error("Expected nil state for a family without a snapshot")
	}
}

func TestLoadStateServerErrorIsUnavailable(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.LoadState(context.Background(), "fam-1")
	if !errors.Is(err, store.ErrRemoteUnavailable) {
		t.Errorf("Expected ErrRemoteUnavailable for a 500, got %v", err)
	}
}

func TestLoadStateTransportErrorIsUnavailable(t *testing.T) {
	client, err := NewClient(models.RemoteConfig{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = client.LoadState(context.Background(), "fam-1")
	if !errors.Is(err, store.ErrRemoteUnavailable) {
		t.Errorf("Expected ErrRemoteUnavailable for a refused connection, got %v", err)
	}
}

func TestSaveStateReturnsIDMapping(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("Expected PUT, got %s", r.Method)
		}
		var sent models.State
		if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
			t.Errorf("Request body was not a state snapshot: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"idMapping":{"local-abc":"srv-42"}}`))
	})

	state := models.NewInitialState()
	remap, err := client.SaveState(context.Background(), "fam-1", state)
	if err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}
	if remap["local-abc"] != "srv-42" {
		t.Errorf("Expected the server's ID mapping, got %v", remap)
	}
}

func TestSaveStateNoContent(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	remap, err := client.SaveState(context.Background(), "fam-1", models.NewInitialState())
	if err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}
	if len(remap) != 0 {
		t.Errorf("Expected an empty mapping for a 204, got %v", remap)
	}
}

func TestSaveStateToleratesMangledMapping(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"idMapping": not-json`))
	})

	remap, err := client.SaveState(context.Background(), "fam-1", models.NewInitialState())
	if err != nil {
		t.Fatalf("A mangled mapping must not fail the write: %v", err)
	}
	if len(remap) != 0 {
		t.Errorf("Expected an empty mapping, got %v", remap)
	}
}

func TestSaveStateServerErrorIsUnavailable(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.SaveState(context.Background(), "fam-1", models.NewInitialState())
	if !errors.Is(err, store.ErrRemoteUnavailable) {
		t.Errorf("Expected ErrRemoteUnavailable for a 502, got %v", err)
	}
}

func TestOwnerIDIsPathEscaped(t *testing.T) {
	var gotPath string
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNotFound)
	})

	if _, err := client.LoadState(context.Background(), "fam/1"); err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if gotPath != "/v1/families/fam%2F1/state" {
		t.Errorf("Owner ID was not escaped, path was %s", gotPath)
	}
}
