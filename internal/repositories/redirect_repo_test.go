package repositories

import (
	"context"
	"strings"
	"testing"

	"github.com/RappnCH/rappn-campaign-tracker/internal/store"
)

func TestRedirectCreateResolve(t *testing.T) {
	repo := NewRedirectRepo(store.NewMemory())
	ctx := context.Background()

	code, err := repo.Create(ctx, 1001, "https://landing.rappn.ch/it?utm_source=facebook")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(code) != 6 {
		t.Errorf("code length = %d, want 6", len(code))
	}
	for _, c := range code {
		if !strings.ContainsRune(codeCharset, c) {
			t.Errorf("code %q contains %q outside charset", code, c)
		}
	}

	target, err := repo.Resolve(ctx, code)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if target.PlacementID != 1001 || target.FinalURL != "https://landing.rappn.ch/it?utm_source=facebook" {
		t.Errorf("Resolve = %+v", target)
	}
}

func TestRedirectResolveUnknown(t *testing.T) {
	repo := NewRedirectRepo(store.NewMemory())

	if _, err := repo.Resolve(context.Background(), "nosuch"); err != ErrNotFound {
		t.Errorf("Resolve unknown code error = %v, want ErrNotFound", err)
	}
}

func TestRedirectCodesUnique(t *testing.T) {
	repo := NewRedirectRepo(store.NewMemory())
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		code, err := repo.Create(ctx, int64(i), "https://landing.rappn.ch/")
		if err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
		if seen[code] {
			t.Fatalf("duplicate code issued: %q", code)
		}
		seen[code] = true
	}
}

func TestNewCodeStaysInCharset(t *testing.T) {
	for i := 0; i < 2000; i++ {
		code, err := newCode()
		if err != nil {
			t.Fatalf("newCode: %v", err)
		}
		if len(code) != codeLength {
			t.Fatalf("code length = %d, want %d", len(code), codeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(codeCharset, c) {
				t.Fatalf("code %q contains %q outside charset", code, c)
			}
		}
	}
}

func TestRedirectRestore(t *testing.T) {
	repo := NewRedirectRepo(store.NewMemory())
	ctx := context.Background()

	if err := repo.Restore(ctx, "abc123", RedirectTarget{PlacementID: 7, FinalURL: "https://landing.rappn.ch/"}); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	target, err := repo.Resolve(ctx, "abc123")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if target.PlacementID != 7 {
		t.Errorf("PlacementID = %d, want 7", target.PlacementID)
	}
}
