package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/domain/product"
)

func TestDecodeProducts(t *testing.T) {
	in := `[
		{"id":"p1","name":"Phone","category":"Electronics","price":999.99,"in_stock":true},
		{"name":"Novel","category":"books","price":12.5}
	]`

	products, err := decodeProducts(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Category != product.Electronics {
		t.Errorf("expected normalized category, got %q", products[0].Category)
	}
	if products[1].ID == "" {
		t.Error("expected generated id")
	}
}

func TestDecodeProducts_Errors(t *testing.T) {
	for name, in := range map[string]string{
		"malformed":        `[{"id":`,
		"unknown category": `[{"id":"p1","name":"X","category":"weapons","price":1}]`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := decodeProducts(strings.NewReader(in)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

type fakeEmbedder struct {
	fail map[string]bool
}

func (f *fakeEmbedder) EmbedImage(_ context.Context, image []byte) ([]float32, error) {
	if f.fail[string(image)] {
		return nil, errors.New("model error")
	}
	return []float32{float32(len(image)), 1}, nil
}

func (f *fakeEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	return nil, errors.New("not supported")
}

func TestAttachEmbeddings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			_, _ = w.Write([]byte("image-ok"))
		case "/broken.png":
			_, _ = w.Write([]byte("image-broken"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	products := []product.Product{
		{ID: "a", ImageURLs: []string{srv.URL + "/ok.png"}},
		{ID: "b", ImageURLs: []string{srv.URL + "/missing.png"}},
		{ID: "c", ImageURLs: []string{srv.URL + "/broken.png"}},
		{ID: "d"},
		{ID: "e", ImageURLs: []string{srv.URL + "/ok.png"}, ImageEmbedding: []float32{9}},
	}
	emb := &fakeEmbedder{fail: map[string]bool{"image-broken": true}}

	n := attachEmbeddings(context.Background(), products, srv.Client(), emb, zap.NewNop())
	if n != 1 {
		t.Fatalf("expected 1 embedded product, got %d", n)
	}
	if !products[0].HasEmbedding() {
		t.Error("expected embedding on a")
	}
	for _, i := range []int{1, 2, 3} {
		if products[i].HasEmbedding() {
			t.Errorf("product %s must stay without embedding", products[i].ID)
		}
	}
	if products[4].ImageEmbedding[0] != 9 {
		t.Error("existing embedding must be kept")
	}
}
