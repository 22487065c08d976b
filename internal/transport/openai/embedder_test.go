package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/smartshopper/internal/domain"
	"github.com/kailas-cloud/smartshopper/internal/metrics"
)

// embeddingServer returns vec for every request and records the inputs it saw.
func embeddingServer(t *testing.T, vec []float32, inputs *[]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req struct {
			Input []string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		*inputs = append(*inputs, req.Input...)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "test-model",
			"data":   []map[string]any{{"object": "embedding", "embedding": vec, "index": 0}},
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbedder_EmbedText(t *testing.T) {
	var inputs []string
	srv := embeddingServer(t, []float32{0.1, 0.2, 0.3}, &inputs)

	before := testutil.ToFloat64(metrics.ImageEmbeddingRequestsTotal.WithLabelValues("test", "text", "success"))
	vec, err := NewEmbedder(testConfig(srv.URL), 0).EmbedText(context.Background(), "a photo of red sneakers")
	if err != nil {
		t.Fatalf("EmbedText failed: %v", err)
	}
	if len(vec) != 3 || vec[2] != 0.3 {
		t.Errorf("unexpected vector %v", vec)
	}
	if len(inputs) != 1 || inputs[0] != "a photo of red sneakers" {
		t.Errorf("unexpected inputs %v", inputs)
	}
	after := testutil.ToFloat64(metrics.ImageEmbeddingRequestsTotal.WithLabelValues("test", "text", "success"))
	if after-before != 1 {
		t.Errorf("expected success counter +1, got %f", after-before)
	}
}

func TestEmbedder_EmbedImageSendsDataURI(t *testing.T) {
	var inputs []string
	srv := embeddingServer(t, []float32{1, 0}, &inputs)

	if _, err := NewEmbedder(testConfig(srv.URL), 2).EmbedImage(context.Background(), pngBytes(t)); err != nil {
		t.Fatalf("EmbedImage failed: %v", err)
	}
	if len(inputs) != 1 || !strings.HasPrefix(inputs[0], "data:image/png;base64,") {
		t.Errorf("expected PNG data URI, got %v", inputs)
	}
}

func TestEmbedder_InvalidImage(t *testing.T) {
	var inputs []string
	srv := embeddingServer(t, []float32{1}, &inputs)
	emb := NewEmbedder(testConfig(srv.URL), 0)

	for _, data := range [][]byte{nil, []byte("plain text, not an image")} {
		if _, err := emb.EmbedImage(context.Background(), data); !errors.Is(err, domain.ErrInvalidImage) {
			t.Errorf("expected ErrInvalidImage, got %v", err)
		}
	}
	if len(inputs) != 0 {
		t.Error("invalid images must not reach the provider")
	}
}

func TestEmbedder_ProviderErrorIsUnavailable(t *testing.T) {
	srv := errorServer(t, http.StatusServiceUnavailable, `{"detail":"model is loading"}`)

	_, err := NewEmbedder(testConfig(srv.URL), 0).EmbedText(context.Background(), "x")
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "model is loading") {
		t.Errorf("expected detail in error, got %v", err)
	}
}

func TestEmbedder_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[],"model":"m"}`))
	}))
	defer srv.Close()

	_, err := NewEmbedder(testConfig(srv.URL), 0).EmbedText(context.Background(), "x")
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}
