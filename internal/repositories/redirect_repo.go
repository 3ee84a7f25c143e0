package repositories

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"

	"github.com/RappnCH/rappn-campaign-tracker/internal/store"
)

const (
	redirectKeyPrefix = "redirect:"
	codeLength        = 6
	codeCharset       = "abcdefghijklmnopqrstuvwxyz0123456789"
	maxCodeAttempts   = 10
)

var ErrCodeSpaceExhausted = errors.New("could not generate a unique redirect code")

// RedirectTarget is what a short code resolves to.
type RedirectTarget struct {
	PlacementID int64  `json:"placement_id"`
	FinalURL    string `json:"final_url"`
}

// RedirectRepo binds opaque short codes to placements. Codes have no expiry
// or revocation: printed QR codes must keep resolving after a campaign ends.
type RedirectRepo struct {
	kv store.Store
}

func NewRedirectRepo(kv store.Store) *RedirectRepo {
	return &RedirectRepo{kv: kv}
}

// Create mints a URL-path-safe base-36 code for the placement and stores the
// binding. Generation retries on collision; insert is atomic against
// concurrent minting.
func (r *RedirectRepo) Create(ctx context.Context, placementID int64, finalURL string) (string, error) {
	data, err := json.Marshal(RedirectTarget{PlacementID: placementID, FinalURL: finalURL})
	if err != nil {
		return "", err
	}

	for i := 0; i < maxCodeAttempts; i++ {
		code, err := newCode()
		if err != nil {
			return "", err
		}
		if r.kv.PutIfAbsent(redirectKeyPrefix+code, data) {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

// Resolve looks up a code. It does not record a click; resolution and click
// logging are separate so beacon tracking can reuse resolution without a
// redirect.
func (r *RedirectRepo) Resolve(ctx context.Context, code string) (*RedirectTarget, error) {
	data, ok := r.kv.Get(redirectKeyPrefix + code)
	if !ok {
		return nil, ErrNotFound
	}
	var target RedirectTarget
	if err := json.Unmarshal(data, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

// Restore re-registers a code loaded from the durable mirror.
func (r *RedirectRepo) Restore(ctx context.Context, code string, target RedirectTarget) error {
	data, err := json.Marshal(target)
	if err != nil {
		return err
	}
	r.kv.PutIfAbsent(redirectKeyPrefix+code, data)
	return nil
}

func newCode() (string, error) {
	// Rejection sampling: bytes at or above the largest multiple of the
	// charset size would skew the modulo toward early charset entries.
	limit := byte(256 - 256%len(codeCharset))
	out := make([]byte, 0, codeLength)
	buf := make([]byte, codeLength)
	for {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, codeCharset[int(b)%len(codeCharset)])
			if len(out) == codeLength {
				return string(out), nil
			}
		}
	}
}
