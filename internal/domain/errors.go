package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrProductNotFound signals a missing product record.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidRecord signals a product record that violates catalog invariants.
	ErrInvalidRecord = errors.New("invalid product record")

	// ErrProviderError signals a failed generation, embedding or analysis call.
	ErrProviderError = errors.New("provider error")
	// ErrNoProviderAvailable signals that every generation provider failed or none is configured.
	ErrNoProviderAvailable = errors.New("no generation provider available")
	// ErrEmbeddingUnavailable signals that the image embedding model could not be loaded.
	// The condition is permanent for the lifetime of the process.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrAnalysisUnavailable signals that no vision analysis result could be produced.
	ErrAnalysisUnavailable = errors.New("image analysis unavailable")
	// ErrDimensionMismatch signals embeddings from incompatible models.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrInvalidImage signals image bytes that cannot be decoded.
	ErrInvalidImage = errors.New("invalid image")
)
