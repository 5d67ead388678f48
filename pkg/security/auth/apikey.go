package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
)

// APIKeyInfo represents a static API key with metadata
type APIKeyInfo struct {
	Key     string
	UserID  string
	Enabled bool
}

// APIKeyValidator validates bearer tokens against a configured set of keys
type APIKeyValidator struct {
	mu   sync.RWMutex
	keys []*APIKeyInfo
}

// NewAPIKeyValidator creates a new API key validator with the given keys
func NewAPIKeyValidator(keys []*APIKeyInfo) *APIKeyValidator {
	return &APIKeyValidator{keys: append([]*APIKeyInfo(nil), keys...)}
}

// Validate implements Validator. Keys are compared in constant time.
func (v *APIKeyValidator) Validate(_ context.Context, token string) (*Principal, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var match *APIKeyInfo
	for _, info := range v.keys {
		if subtle.ConstantTimeCompare([]byte(info.Key), []byte(token)) == 1 {
			match = info
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: unknown API key", ErrInvalidCredential)
	}
	if !match.Enabled {
		return nil, fmt.Errorf("%w: API key disabled", ErrInvalidCredential)
	}

	return &Principal{Subject: match.UserID, Method: "apikey"}, nil
}

// Add adds or replaces an API key
func (v *APIKeyValidator) Add(info *APIKeyInfo) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, existing := range v.keys {
		if existing.Key == info.Key {
			v.keys[i] = info
			return
		}
	}
	v.keys = append(v.keys, info)
}

// Len returns the number of configured keys
func (v *APIKeyValidator) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.keys)
}
