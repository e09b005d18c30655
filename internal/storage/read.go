package storage

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

// ReadString returns the value under key. Missing keys and store errors
// both read as absent.
func ReadString(ctx context.Context, s Store, key string) (string, bool) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return "", false
	}
	return v, true
}

// ReadJSON decodes the value under key into v. It reports false when the key
// is missing or the value does not decode into v.
func ReadJSON(ctx context.Context, s Store, key string, v interface{}) bool {
	raw, ok := ReadString(ctx, s, key)
	if !ok || strings.TrimSpace(raw) == "" {
		return false
	}
	data := []byte(raw)
	if !json.Valid(data) {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// ReadID parses an integer identifier stored as a string. Zero means absent.
func ReadID(ctx context.Context, s Store, key string) int64 {
	raw, ok := ReadString(ctx, s, key)
	if !ok {
		return 0
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
