package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/formpost/formpost/internal/model"
)

func TestOwnerKey(t *testing.T) {
	t.Parallel()

	if got := ownerKey("abc"); got != "owner:sitekey:abc" {
		t.Errorf("ownerKey = %q", got)
	}
}

func TestEncodeOwner_OmitsCredentials(t *testing.T) {
	t.Parallel()

	owner := &model.Owner{
		ID:           "o1",
		Email:        "a@example.com",
		SiteKey:      "k1",
		PasswordHash: "$argon2id$secret",
		GoogleID:     "g-123",
	}

	data, err := encodeOwner(owner)
	if err != nil {
		t.Fatalf("encodeOwner failed: %v", err)
	}
	if strings.Contains(string(data), "argon2id") || strings.Contains(string(data), "g-123") {
		t.Errorf("cached owner leaks credentials: %s", data)
	}
}

func TestDecodeOwner(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	data, _ := encodeOwner(&model.Owner{
		ID:        "o1",
		Email:     "a@example.com",
		SiteKey:   "k1",
		Theme:     model.Fields{"primary": model.StringValue("#000")},
		CreatedAt: created,
	})

	got, err := decodeOwner(data)
	if err != nil {
		t.Fatalf("decodeOwner failed: %v", err)
	}
	if got.ID != "o1" || got.SiteKey != "k1" || !got.CreatedAt.Equal(created) {
		t.Errorf("unexpected owner %+v", got)
	}
	if v, _ := got.Theme["primary"].Str(); v != "#000" {
		t.Errorf("theme = %v", got.Theme)
	}
}

func TestDecodeOwner_Corrupt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"not json", "{{"},
		{"missing site key", `{"id":"o1"}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := decodeOwner([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDecodeOwner_NilTheme(t *testing.T) {
	t.Parallel()

	got, err := decodeOwner([]byte(`{"id":"o1","site_key":"k1","theme":null}`))
	if err != nil {
		t.Fatalf("decodeOwner failed: %v", err)
	}
	if got.Theme == nil {
		t.Error("theme should default to an empty mapping")
	}
}
