// Package gravatar derives avatar URLs from user email addresses.
package gravatar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/trainlog/trainlog/internal/config"
)

const baseURL = "https://www.gravatar.com/avatar/"

var (
	defaultImages = []string{"404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"}
	ratings       = []string{"g", "pg", "r", "x"}
)

// Resolver builds avatar URLs. A nil Resolver returns empty URLs.
type Resolver struct {
	query string
}

// New returns a Resolver for cfg, or nil when avatars are disabled.
func New(cfg *config.GravatarConfig) (*Resolver, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	params := url.Values{}
	if cfg.DefaultImage != "" {
		if !slices.Contains(defaultImages, cfg.DefaultImage) {
			return nil, fmt.Errorf("invalid gravatar default image %q", cfg.DefaultImage)
		}
		params.Set("d", cfg.DefaultImage)
	}
	if cfg.Rating != "" {
		if !slices.Contains(ratings, cfg.Rating) {
			return nil, fmt.Errorf("invalid gravatar rating %q", cfg.Rating)
		}
		params.Set("r", cfg.Rating)
	}
	if cfg.Size != 0 {
		if cfg.Size < 1 || cfg.Size > 2048 {
			return nil, fmt.Errorf("invalid gravatar size %d (must be 1-2048)", cfg.Size)
		}
		params.Set("s", strconv.Itoa(cfg.Size))
	}

	return &Resolver{query: params.Encode()}, nil
}

// URL returns the avatar URL for email, or "" if the resolver is disabled or email is empty.
func (r *Resolver) URL(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if r == nil || email == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(email))
	u := baseURL + hex.EncodeToString(hash[:])
	if r.query != "" {
		u += "?" + r.query
	}
	return u
}
