package report

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/playline/internal/domain/item"
)

func TestItemFinished(t *testing.T) {
	var received atomic.Value

	// Mock server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var record PlayRecord
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&record))
		received.Store(record)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	reporter, err := New(Config{Endpoint: server.URL})
	assert.NoError(t, err)

	reporter.ItemFinished(item.Item{ID: "song1", Title: "First"}, 93*time.Second)

	record, ok := received.Load().(PlayRecord)
	assert.True(t, ok)
	assert.Equal(t, "song1", record.ItemID)
	assert.Equal(t, "First", record.Title)
	assert.InDelta(t, 93.0, record.PlayedSec, 0.001)
	assert.False(t, record.FinishedAt.IsZero())
}

func TestItemFinishedRejected(t *testing.T) {
	var calls atomic.Int32

	// Mock server returning an API error
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": "unknown item"}`)
	}))
	defer server.Close()

	reporter, err := New(Config{Endpoint: server.URL})
	assert.NoError(t, err)

	// Delivery failure is swallowed; the call must not panic or block.
	reporter.ItemFinished(item.Item{ID: "song1"}, time.Second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewRequiresEndpoint(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
