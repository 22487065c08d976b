package product

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	domprod "github.com/kailas-cloud/smartshopper/internal/domain/product"
)

// Hash field names of an indexed product.
const (
	fieldDoc          = "doc"
	fieldEmbedding    = "embedding"
	fieldName         = "name"
	fieldDescription  = "description"
	fieldBrand        = "brand"
	fieldBrandTag     = "brand_tag"
	fieldFeatures     = "features"
	fieldTags         = "tags"
	fieldCategory     = "category"
	fieldInStock      = "in_stock"
	fieldHasEmbedding = "has_embedding"
	fieldPrice        = "price"
	fieldRating       = "rating"
)

// buildHashFields flattens a product into HSET fields. The full record lives
// in "doc" without the vector; searchable copies feed the index.
func buildHashFields(p *domprod.Product) (map[string]string, error) {
	doc, err := json.Marshal(p.WithoutEmbedding())
	if err != nil {
		return nil, fmt.Errorf("marshal product %s: %w", p.ID, err)
	}

	m := map[string]string{
		fieldDoc:          string(doc),
		fieldName:         p.Name,
		fieldDescription:  p.Description,
		fieldFeatures:     strings.Join(p.Features, ". "),
		fieldTags:         strings.Join(p.Tags, " "),
		fieldCategory:     string(p.Category),
		fieldInStock:      strconv.FormatBool(p.InStock),
		fieldHasEmbedding: strconv.FormatBool(p.HasEmbedding()),
		fieldPrice:        strconv.FormatFloat(p.Price, 'f', -1, 64),
	}
	if p.Brand != "" {
		m[fieldBrand] = p.Brand
		m[fieldBrandTag] = p.Brand
	}
	if p.Rating != nil {
		m[fieldRating] = strconv.FormatFloat(*p.Rating, 'f', -1, 64)
	}
	if p.HasEmbedding() {
		m[fieldEmbedding] = vectorToBytes(p.ImageEmbedding)
	}
	return m, nil
}

// parseHashFields rebuilds a product from the "doc" and "embedding" fields.
func parseHashFields(m map[string]string) (domprod.Product, error) {
	raw, ok := m[fieldDoc]
	if !ok || raw == "" {
		return domprod.Product{}, fmt.Errorf("missing %q field", fieldDoc)
	}
	var p domprod.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return domprod.Product{}, fmt.Errorf("unmarshal product: %w", err)
	}
	if emb, ok := m[fieldEmbedding]; ok {
		p.ImageEmbedding = bytesToVector(emb)
	}
	return p, nil
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
