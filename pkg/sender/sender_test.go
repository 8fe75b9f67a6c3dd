package sender

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendKeepsInputOrder(t *testing.T) {
	// the first URL answers slowest; index-slotted results must still
	// come back in input order
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/first":
			time.Sleep(30 * time.Millisecond)
		case "/second":
			time.Sleep(10 * time.Millisecond)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"path": "` + r.URL.Path + `"}`))
	}))
	defer server.Close()

	urls := []string{server.URL + "/first", server.URL + "/second", server.URL + "/third"}
	results := New(WithWorkers(3)).Send(context.Background(), urls)

	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, urls[i], res.URL)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Empty(t, res.Err)
	}
}

func TestSendDecodesJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"requestUUID": "0efe7da1", "allURLs": ["https://opendap.example.org/async_results"]}`))
	}))
	defer server.Close()

	results := New().Send(context.Background(), []string{server.URL})
	require.Len(t, results, 1)

	doc, ok := results[0].Response.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "0efe7da1", doc["requestUUID"])
}

func TestSendFallsBackToRawText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("request accepted"))
	}))
	defer server.Close()

	results := New().Send(context.Background(), []string{server.URL})
	require.Len(t, results, 1)
	assert.Equal(t, "request accepted", results[0].Response)
}

func TestSendRecordsRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "no data in range"}`))
	}))
	defer server.Close()

	results := New().Send(context.Background(), []string{server.URL})
	require.Len(t, results, 1)
	assert.Equal(t, http.StatusBadRequest, results[0].StatusCode)
	assert.Empty(t, results[0].Err)

	doc, ok := results[0].Response.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "no data in range", doc["message"])
}

func TestSendUnescapesURL(t *testing.T) {
	var gotFormat string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFormat = r.URL.Query().Get("format")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	escaped := server.URL + "/sensor/inv?format=application%2Fnetcdf"
	results := New().Send(context.Background(), []string{escaped})
	require.Len(t, results, 1)
	require.Empty(t, results[0].Err)
	assert.Equal(t, "application/netcdf", gotFormat)
}

func TestSendConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	results := New().Send(context.Background(), []string{server.URL})
	require.Len(t, results, 1)
	assert.NotEmpty(t, results[0].Err)
	assert.Zero(t, results[0].StatusCode)
	assert.Nil(t, results[0].Response)
}

func TestSendAppliesCredentials(t *testing.T) {
	var user, token string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, token, _ = r.BasicAuth()
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	s := New(WithCredentials("OOIAPI-TEST", "TEMP-TOKEN"))
	results := s.Send(context.Background(), []string{server.URL})
	require.Len(t, results, 1)
	assert.Equal(t, "OOIAPI-TEST", user)
	assert.Equal(t, "TEMP-TOKEN", token)
}

type countingRecorder struct {
	mu         sync.Mutex
	dispatches []int
}

func (c *countingRecorder) ObserveGatewayRequest(endpoint string, status int, elapsed time.Duration) {}

func (c *countingRecorder) ObserveDispatch(status int, elapsed time.Duration) {
	c.mu.Lock()
	c.dispatches = append(c.dispatches, status)
	c.mu.Unlock()
}

func TestSendObservesDispatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	rec := &countingRecorder{}
	s := New(WithMetrics(rec), WithWorkers(2))
	s.Send(context.Background(), []string{server.URL, server.URL})

	require.Len(t, rec.dispatches, 2)
	assert.Equal(t, []int{http.StatusOK, http.StatusOK}, rec.dispatches)
}
