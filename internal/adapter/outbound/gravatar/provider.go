// Package gravatar implements an avatar provider backed by the
// Gravatar image service.
package gravatar

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/avatar"
)

const (
	defaultBaseURL = "https://secure.gravatar.com/avatar"
	defaultTimeout = 5 * time.Second

	// maxImageBytes caps the downloaded image size.
	maxImageBytes = 2 << 20
)

// provider implements avatar.Provider. Gravatar is the designated
// fallback source: its candidate is used only when no other provider
// offers one.
type provider struct {
	client  *http.Client
	baseURL string
}

// NewProvider creates a new Gravatar provider.
func NewProvider() avatar.Provider {
	return &provider{
		client:  &http.Client{Timeout: defaultTimeout},
		baseURL: defaultBaseURL,
	}
}

// NewProviderWithBaseURL creates a Gravatar provider against a custom
// endpoint. Used in tests.
func NewProviderWithBaseURL(client *http.Client, baseURL string) avatar.Provider {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &provider{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (p *provider) SuggestAvatars(ctx context.Context, user *model.User) (map[string]model.AvatarCandidate, error) {
	if !user.HasEmail() {
		return nil, nil
	}

	// d=404 asks Gravatar to 404 instead of serving a generated image,
	// so an absent avatar is distinguishable from a real one.
	email := strings.ToLower(strings.TrimSpace(user.Emails()[0].String()))
	hash := sha256.Sum256([]byte(email))
	url := fmt.Sprintf("%s/%s?d=404&s=200", p.baseURL, hex.EncodeToString(hash[:]))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build gravatar request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gravatar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gravatar returned status %d", resp.StatusCode)
	}

	blob, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read gravatar image: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	return map[string]model.AvatarCandidate{
		model.FallbackAvatarSource: {
			SourceName:  model.FallbackAvatarSource,
			ImageBlob:   blob,
			ContentType: contentType,
		},
	}, nil
}
