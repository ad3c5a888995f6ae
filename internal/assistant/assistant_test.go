package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vyapar/backend/internal/cache"
	"vyapar/backend/internal/domain"
)

// fakeChat answers every chat completion with reply, or fails with status when non-zero.
func fakeChat(t *testing.T, reply string, status int) (*LLM, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Len(t, req.Messages, 1)

		if status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return NewLLM("test-key", srv.URL, "test-model"), &calls
}

func TestLLMExtractorDecodesFencedJSON(t *testing.T) {
	reply := "```json\n{\"intent\":\"sale\",\"item\":\"red kurtis\",\"quantity\":2,\"selling_price\":\"1500\",\"cost_price\":null,\"customer\":\"Mrs. Sharma\",\"gst_rate\":null}\n```"
	llm, _ := fakeChat(t, reply, 0)

	ext, err := NewLLMExtractor(llm).Extract(context.Background(), "Sold 2 red kurtis to Mrs. Sharma for ₹1500 each")
	require.NoError(t, err)

	assert.Equal(t, "sale", ext.Intent)
	assert.Equal(t, "red kurtis", ext.Item)
	assert.True(t, decimal.NewFromInt(2).Equal(ext.Quantity.Decimal))
	assert.True(t, decimal.NewFromInt(1500).Equal(ext.SellingPrice.Decimal))
	assert.False(t, ext.CostPrice.Valid)
	assert.False(t, ext.GSTRate.Valid)
}

func TestLLMExtractorRejectsProse(t *testing.T) {
	llm, _ := fakeChat(t, "I think this is a sale.", 0)
	_, err := NewLLMExtractor(llm).Extract(context.Background(), "sold stuff")
	assert.ErrorIs(t, err, ErrNotUnderstood)
}

func TestLLMExtractorUpstreamFailure(t *testing.T) {
	llm, _ := fakeChat(t, "", http.StatusInternalServerError)
	_, err := NewLLMExtractor(llm).Extract(context.Background(), "sold stuff")
	assert.ErrorIs(t, err, ErrNotUnderstood)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`  {"a":1} `))
}

func TestLLMAdvisorFallsBackOnFailure(t *testing.T) {
	llm, _ := fakeChat(t, "", http.StatusBadGateway)
	a := NewLLMAdvisor(llm, "₹")

	assert.Equal(t, insightFallback, a.Insight(context.Background(), "how am I doing?", domain.Snapshot{}))
	assert.Equal(t, adviceFallback, a.Advice(context.Background(), domain.Snapshot{}))
}

func TestLLMAdvisorReturnsModelText(t *testing.T) {
	llm, calls := fakeChat(t, "  You made a profit of ₹1990.  ", 0)
	a := NewLLMAdvisor(llm, "₹")

	assert.Equal(t, "You made a profit of ₹1990.", a.Insight(context.Background(), "profit?", domain.Snapshot{}))
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

type countingExtractor struct {
	calls int
	err   error
}

func (c *countingExtractor) Extract(context.Context, string) (*domain.Extraction, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &domain.Extraction{Intent: "query"}, nil
}

type mapCache struct {
	items map[string]*domain.Extraction
}

func (m *mapCache) Get(_ context.Context, key string) (*domain.Extraction, bool, error) {
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, key string, v *domain.Extraction, _ time.Duration) error {
	m.items[key] = v
	return nil
}

func TestCachedExtractorServesRepeats(t *testing.T) {
	next := &countingExtractor{}
	c := &mapCache{items: map[string]*domain.Extraction{}}
	e := NewCachedExtractor(next, c, time.Minute)

	_, err := e.Extract(context.Background(), "How much did I earn?")
	require.NoError(t, err)
	_, err = e.Extract(context.Background(), "How much  did I earn? ")
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Contains(t, c.items, cache.ExtractionKey("How much did I earn?"))
}

func TestCachedExtractorKeepsSpellingApart(t *testing.T) {
	next := &countingExtractor{}
	c := &mapCache{items: map[string]*domain.Extraction{}}
	e := NewCachedExtractor(next, c, time.Minute)

	_, err := e.Extract(context.Background(), "Sold 2 Red Kurti to Mrs. Sharma")
	require.NoError(t, err)
	_, err = e.Extract(context.Background(), "sold 2 red kurti to mrs. sharma")
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls)
	assert.Len(t, c.items, 2)
}

func TestCachedExtractorDoesNotCacheFailures(t *testing.T) {
	next := &countingExtractor{err: ErrNotUnderstood}
	c := &mapCache{items: map[string]*domain.Extraction{}}
	e := NewCachedExtractor(next, c, time.Minute)

	_, err := e.Extract(context.Background(), "???")
	assert.True(t, errors.Is(err, ErrNotUnderstood))
	assert.Empty(t, c.items)
}
