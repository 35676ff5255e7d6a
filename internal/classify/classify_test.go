package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/THE-AGENTVE/Leads-Scrapper/internal/config"
	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
	"go.uber.org/zap"
)

func testClient(endpoint string) *Client {
	return New(&config.ClassifyConfig{
		Endpoint: endpoint,
		Model:    "test-model",
		APIKey:   "test-key",
		Timeout:  2 * time.Second,
	}, zap.NewNop())
}

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)

		resp := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestClassifyParsesStrictJSON(t *testing.T) {
	srv := chatServer(t, `{"isRelevant": true, "cleanCategory": "Dentist", "summary": "A dental practice."}`)
	defer srv.Close()

	r := testClient(srv.URL).Classify(context.Background(), &models.Lead{Name: "Springfield Dental"})
	assert.Equal(t, Result{IsRelevant: true, CleanCategory: "Dentist", Summary: "A dental practice."}, r)
}

func TestClassifyExtractsEmbeddedJSON(t *testing.T) {
	srv := chatServer(t, "Sure! Here is the result:\n```json\n{\"isRelevant\": false, \"cleanCategory\": \"Spam\", \"summary\": \"Not a {real} business.\"}\n``` hope that helps")
	defer srv.Close()

	r := testClient(srv.URL).Classify(context.Background(), &models.Lead{Name: "x y"})
	assert.False(t, r.IsRelevant)
	assert.Equal(t, "Spam", r.CleanCategory)
	assert.Equal(t, "Not a {real} business.", r.Summary)
}

func TestClassifyMalformedContentSoftDefault(t *testing.T) {
	long := strings.Repeat("the service rambled on without any JSON at all. ", 20)
	srv := chatServer(t, long)
	defer srv.Close()

	r := testClient(srv.URL).Classify(context.Background(), &models.Lead{Name: "x y"})
	assert.True(t, r.IsRelevant)
	assert.Equal(t, "Uncategorized", r.CleanCategory)
	assert.Equal(t, 500, len(r.Summary), "summary is capped at the first 500 chars")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(long), r.Summary[:40]))
}

func TestTruncateNeverSplitsRunes(t *testing.T) {
	multi := strings.Repeat("世", 200) // 3 bytes per rune, 600 bytes total
	out := truncate(multi, summaryLimit)
	assert.True(t, utf8.ValidString(out), "summary must stay valid UTF-8")
	assert.Equal(t, 498, len(out), "cap backs off to the previous rune boundary")

	ascii := strings.Repeat("a", 600)
	assert.Equal(t, summaryLimit, len(truncate(ascii, summaryLimit)))
	assert.Equal(t, "short", truncate("  short  ", summaryLimit))
}

func TestClassifyTransportErrorHardDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	r := testClient(srv.URL).Classify(context.Background(), &models.Lead{Name: "x y"})
	assert.Equal(t, Result{}, r)
}

func TestClassifyServiceErrorHardDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	r := testClient(srv.URL).Classify(context.Background(), &models.Lead{Name: "x y"})
	assert.Equal(t, Result{}, r)
}

func TestClassifyMissingCredentialsHardDefault(t *testing.T) {
	c := New(&config.ClassifyConfig{Endpoint: "http://unused.invalid", Timeout: time.Second}, zap.NewNop())
	r := c.Classify(context.Background(), &models.Lead{Name: "x y"})
	assert.Equal(t, Result{}, r)
}

func TestApplyPreservesOriginalsAndBackfills(t *testing.T) {
	l := &models.Lead{Category: "restaurants", Description: "old description"}

	Apply(l, Result{IsRelevant: true, CleanCategory: "Restaurant", Summary: "A nice place."})
	assert.Equal(t, "restaurants", l.OriginalCategory)
	assert.Equal(t, "old description", l.OriginalDescription)
	assert.Equal(t, "Restaurant", l.Category, "classification overwrites the consumer-facing category")
	assert.Equal(t, "Restaurant", l.CleanCategory)
	assert.Equal(t, "A nice place.", l.Summary)

	l2 := &models.Lead{Category: "restaurants", Description: "old description"}
	Apply(l2, Result{}) // hard default
	assert.False(t, l2.IsRelevant)
	assert.Equal(t, "restaurants", l2.CleanCategory, "empty result fields are backfilled from originals")
	assert.Equal(t, "old description", l2.Summary)
	assert.Equal(t, "restaurants", l2.Category, "category is not overwritten by an empty result")
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSONObject(`noise {"a":1} noise`))
	assert.Equal(t, `{"a":{"b":2}}`, extractJSONObject(`{"a":{"b":2}}`))
	assert.Equal(t, `{"a":"}"}`, extractJSONObject(`{"a":"}"}`), "braces inside strings must not close the block")
	assert.Equal(t, "", extractJSONObject("no braces here"))
	assert.Equal(t, "", extractJSONObject(`{"unbalanced": 1`))
}
