package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ternarybob/censeo/internal/models"
)

// CanonicalKey derives the cache key for a completion request. Object keys are
// sorted recursively before serialization so two structurally-equal requests
// with different key-insertion order collide to the same entry. The category
// prefix keeps digests from different task types apart.
func CanonicalKey(request *models.CompletionRequest) (string, error) {
	material := map[string]interface{}{
		"task":          string(request.Task),
		"payload":       request.Payload,
		"max_length":    request.MaxLength,
		"variant_count": request.VariantCount,
	}

	canonical, err := canonicalize(material)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize request: %w", err)
	}

	digest := sha256.Sum256(canonical)
	return hex.EncodeToString(digest[:]), nil
}

// canonicalize serializes v with all object keys in sorted order at every
// nesting level.
func canonicalize(v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case map[string]interface{}:
		return canonicalizeMap(val)
	case map[string]string:
		m := make(map[string]interface{}, len(val))
		for k, s := range val {
			m[k] = s
		}
		return canonicalizeMap(m)
	case []interface{}:
		parts := make([]json.RawMessage, 0, len(val))
		for _, item := range val {
			b, err := canonicalize(item)
			if err != nil {
				return nil, err
			}
			parts = append(parts, b)
		}
		return json.Marshal(parts)
	default:
		return json.Marshal(val)
	}
}

func canonicalizeMap(m map[string]interface{}) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := []byte{'{'}
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}
