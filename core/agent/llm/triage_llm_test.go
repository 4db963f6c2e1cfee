package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"triage_server/core/domain"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONFromText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		primary any
		wantErr bool
	}{
		{name: "plain", text: `{"primaryCategory":"Outage"}`, primary: "Outage"},
		{name: "fenced", text: "```json\n{\"primaryCategory\":\"Outage\"}\n```", primary: "Outage"},
		{name: "prose around", text: "Sure! Here it is: {\"primaryCategory\":\"Billing Issue\"} hope this helps", primary: "Billing Issue"},
		{name: "no object", text: "I cannot help with that.", wantErr: true},
		{name: "broken object", text: "{primaryCategory: Outage}", wantErr: true},
		{name: "empty", text: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := parseJSONFromText(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidJSON)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.primary, raw.PrimaryCategory)
		})
	}
}

func TestNormalizeRaw(t *testing.T) {
	t.Run("exact labels kept", func(t *testing.T) {
		got := normalizeRaw(&rawClassification{
			PrimaryCategory: "Outage",
			Categories:      []any{"Outage", "Technical Problem", "Outage", 7, "Nonsense"},
			Confidence:      0.9,
			Reasoning:       "Prod is down.",
		}, "m")
		assert.Equal(t, domain.CategoryOutage, got.PrimaryCategory)
		assert.Equal(t, []domain.Category{domain.CategoryOutage, domain.CategoryTechnical}, got.Categories)
		assert.Equal(t, 0.9, got.Confidence)
		assert.Equal(t, "Prod is down.", got.Reasoning)
		assert.Equal(t, "m", got.Model)
	})

	t.Run("defaults", func(t *testing.T) {
		got := normalizeRaw(&rawClassification{PrimaryCategory: "billing", Confidence: "high"}, "m")
		assert.Equal(t, domain.CategoryUnknown, got.PrimaryCategory)
		assert.Equal(t, []domain.Category{domain.CategoryUnknown}, got.Categories)
		assert.Equal(t, defaultConfidence, got.Confidence)
		assert.Equal(t, defaultReasoning, got.Reasoning)
	})

	t.Run("filtered to nothing falls back to primary", func(t *testing.T) {
		got := normalizeRaw(&rawClassification{PrimaryCategory: "Feature Request", Categories: []any{"x"}}, "m")
		assert.Equal(t, []domain.Category{domain.CategoryFeatureRequest}, got.Categories)
	})

	t.Run("confidence clamped and capped categories", func(t *testing.T) {
		got := normalizeRaw(&rawClassification{
			PrimaryCategory: "Outage",
			Categories:      []any{"Outage", "Technical Problem", "Billing Issue", "Account Access"},
			Confidence:      1.7,
		}, "m")
		assert.Equal(t, 1.0, got.Confidence)
		assert.Len(t, got.Categories, domain.MaxCategories)
	})
}

func TestBuildClassifyPrompt(t *testing.T) {
	p := buildClassifyPrompt("my invoice is wrong")
	assert.Contains(t, p, "Allowed categories: Billing Issue, Technical Problem, Outage, Account Access, Feature Request, General Inquiry, Feedback/Praise, Unknown")
	assert.True(t, strings.HasSuffix(p, `Message: """my invoice is wrong"""`))
}

func completionServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req["model"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   DefaultModel,
			"choices": []any{map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
}

func TestClient_Classify(t *testing.T) {
	srv := completionServer(t, http.StatusOK,
		"```json\n{\"primaryCategory\":\"Billing Issue\",\"categories\":[\"Billing Issue\"],\"confidence\":0.82,\"reasoning\":\"Refund request.\"}\n```")
	defer srv.Close()

	c := NewClientWithConfig(ClientConfig{APIKey: "test-key", BaseURL: srv.URL})
	got, err := c.Classify(context.Background(), "I want a refund")
	require.NoError(t, err)

	assert.Equal(t, domain.CategoryBilling, got.PrimaryCategory)
	assert.Equal(t, 0.82, got.Confidence)
	assert.Equal(t, DefaultModel, got.Model)
	require.NotNil(t, got.LatencyMs)
	assert.False(t, got.Cached)
}

func TestClient_ClassifyErrors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		srv := completionServer(t, http.StatusTooManyRequests, "")
		defer srv.Close()

		c := NewClientWithConfig(ClientConfig{APIKey: "test-key", BaseURL: srv.URL})
		_, err := c.Classify(context.Background(), "hello")
		assert.Error(t, err)
	})

	t.Run("unparseable content", func(t *testing.T) {
		srv := completionServer(t, http.StatusOK, "no json here")
		defer srv.Close()

		c := NewClientWithConfig(ClientConfig{APIKey: "test-key", BaseURL: srv.URL})
		_, err := c.Classify(context.Background(), "hello")
		assert.ErrorIs(t, err, ErrInvalidJSON)
	})
}
