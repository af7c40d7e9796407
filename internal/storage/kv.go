// Package storage provides the key-value store and repository
// implementations backing the tipbase services.
package storage

import (
	"context"
	"encoding/json"
	"errors"
)

// Storage keys owned by the domain services. Each service owns exactly one
// key and serializes its whole state as a single JSON blob under it.
const (
	KeyUserAuth      = "tbase_user_auth"
	KeyNotifications = "tbase_notifications"
	KeyGeneratedTips = "tbase_generated_tips"
	KeyResultsSeen   = "tbase_results_seen"
)

// ErrKeyNotFound is returned by Get when the key has no value
var ErrKeyNotFound = errors.New("key not found")

// KV is the opaque string-keyed store the services read and write JSON
// blobs into. Implementations must treat a missing key as ErrKeyNotFound,
// never as an empty value.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// GetJSON reads a key and unmarshals it into dest. A missing or corrupt
// blob reports found=false and leaves dest untouched; corruption is never
// propagated as an error so callers fall back to their empty state.
func GetJSON(ctx context.Context, kv KV, key string, dest interface{}) (found bool, err error) {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	if jsonErr := json.Unmarshal([]byte(raw), dest); jsonErr != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON marshals value and writes it under key
func SetJSON(ctx context.Context, kv KV, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return kv.Set(ctx, key, string(raw))
}
