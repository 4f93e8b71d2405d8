package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impactdesk/insight-cli/internal/ratelimit"
)

// newTestService points the adapter at a test server with retries enabled
// and sleeping disabled.
func newTestService(t *testing.T, url string) (*EmbeddingService, *atomic.Int32) {
	t.Helper()
	svc, err := NewEmbeddingService(Config{
		APIKey:  "test-key",
		BaseURL: url,
		Limiter: ratelimit.Unlimited{},
	})
	require.NoError(t, err)

	var sleeps atomic.Int32
	svc.sleep = func(_ context.Context, _ time.Duration) error {
		sleeps.Add(1)
		return nil
	}
	return svc, &sleeps
}

// embeddingsHandler returns one fixed vector per input, tagged with indexes.
func embeddingsHandler(t *testing.T, vecFor func(i int) []float64) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type datum struct {
			Embedding []float64 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]datum, len(req.Input))
		for i := range req.Input {
			data[i] = datum{Embedding: vecFor(i), Index: i}
		}
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"data": data}))
	}
}

func TestNewEmbeddingService(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		_, err := NewEmbeddingService(Config{})
		assert.Error(t, err)
	})

	t.Run("fills defaults", func(t *testing.T) {
		svc, err := NewEmbeddingService(Config{APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, svc.ModelName())
		assert.Equal(t, 1536, svc.Dimensions())
		assert.Equal(t, DefaultMaxAttempts, svc.maxAttempts)
		assert.Equal(t, DefaultInitialBackoff, svc.initialBackoff)
	})
}

func TestEmbedBatch_PreservesOrder(t *testing.T) {
	server := httptest.NewServer(embeddingsHandler(t, func(i int) []float64 {
		return []float64{float64(i), float64(i) + 0.5}
	}))
	defer server.Close()

	svc, _ := newTestService(t, server.URL)

	embeddings, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, embeddings, 3)
	for i, embedding := range embeddings {
		assert.Equal(t, []float32{float32(i), float32(i) + 0.5}, embedding)
	}
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	svc, _ := newTestService(t, "http://unused.invalid")
	embeddings, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, embeddings)
}

func TestEmbedBatch_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	handler := embeddingsHandler(t, func(int) []float64 { return []float64{1} })
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		handler(w, r)
	}))
	defer server.Close()

	svc, sleeps := newTestService(t, server.URL)

	embeddings, err := svc.EmbedBatch(context.Background(), []string{"a"})
	require.NoError(t, err)
	require.Len(t, embeddings, 1)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, int32(2), sleeps.Load())
}

func TestEmbedBatch_ExhaustedRetriesPropagate(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc, sleeps := newTestService(t, server.URL)

	_, err := svc.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(DefaultMaxAttempts), calls.Load())
	assert.Equal(t, int32(DefaultMaxAttempts-1), sleeps.Load())
}

func TestEmbedBatch_BackoffDoubles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc, err := NewEmbeddingService(Config{
		APIKey:         "k",
		BaseURL:        server.URL,
		Limiter:        ratelimit.Unlimited{},
		MaxAttempts:    4,
		InitialBackoff: 100 * time.Millisecond,
	})
	require.NoError(t, err)

	var delays []time.Duration
	svc.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	_, err = svc.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
	}, delays)
}

func TestEmbedBatch_EmptyVectorSetIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer server.Close()

	svc, _ := newTestService(t, server.URL)

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2 embeddings")
}

func TestEmbedBatch_EmptyEmbeddingIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data": [{"embedding": [], "index": 0}]}`)
	}))
	defer server.Close()

	svc, _ := newTestService(t, server.URL)

	_, err := svc.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty embedding")
}

func TestEmbedBatch_ServiceErrorField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"error": {"message": "quota exceeded", "type": "rate_limit"}}`)
	}))
	defer server.Close()

	svc, _ := newTestService(t, server.URL)

	_, err := svc.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestEmbed_SingleText(t *testing.T) {
	server := httptest.NewServer(embeddingsHandler(t, func(int) []float64 {
		return []float64{0.25, 0.75}
	}))
	defer server.Close()

	svc, _ := newTestService(t, server.URL)

	embedding, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, 0.75}, embedding)
}

func TestEmbedBatch_WaitsOnLimiter(t *testing.T) {
	server := httptest.NewServer(embeddingsHandler(t, func(int) []float64 { return []float64{1} }))
	defer server.Close()

	limiter := ratelimit.NewInterval(50 * time.Millisecond)
	svc, err := NewEmbeddingService(Config{
		APIKey:  "k",
		BaseURL: server.URL,
		Limiter: limiter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.EmbedBatch(ctx, []string{"a"})
	require.NoError(t, err)

	start := time.Now()
	_, err = svc.EmbedBatch(ctx, []string{"b"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}
