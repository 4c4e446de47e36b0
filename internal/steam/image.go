package steam

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"steam-bff-backend/internal/normalize"
	"steam-bff-backend/internal/upstream"
)

// ErrInvalidImageURL is returned for image URLs outside the CDN allow-list.
var ErrInvalidImageURL = errors.New("invalid image url")

const maxImageRedirects = 5

// ValidateImageURL checks that rawURL is an http(s) URL on an allowed host.
func (s *Service) ValidateImageURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImageURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidImageURL, u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	for _, allowed := range s.cfg.ImageHosts {
		if host == strings.ToLower(allowed) {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: host %q is not allowed", ErrInvalidImageURL, host)
}

// checkImageRedirect holds every redirect hop to the same allow-list as the
// requested URL.
func (s *Service) checkImageRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxImageRedirects {
		return fmt.Errorf("stopped after %d redirects", len(via))
	}
	if _, err := s.ValidateImageURL(req.URL.String()); err != nil {
		return fmt.Errorf("redirect refused: %w", err)
	}
	return nil
}

// Image fetches an image from the Steam CDN. The URL and every redirect hop
// are validated before they are requested; a rejected URL yields a 400
// UpstreamError.
func (s *Service) Image(ctx context.Context, rawURL string) (*upstream.Response, error) {
	u, err := s.ValidateImageURL(rawURL)
	if err != nil {
		return nil, &normalize.UpstreamError{Status: http.StatusBadRequest, Message: ErrInvalidImageURL.Error(), Err: err}
	}

	resp, err := s.images.Get(ctx, u.String())
	if errors.Is(err, ErrInvalidImageURL) {
		s.logger.Warn("image redirect left the allow-list", zap.String("url", u.String()), zap.Error(err))
		return nil, &normalize.UpstreamError{Status: http.StatusBadRequest, Message: ErrInvalidImageURL.Error(), Err: err}
	}
	if err != nil {
		s.logger.Error("image fetch failed", zap.String("url", u.String()), zap.Error(err))
		return nil, &normalize.UpstreamError{Status: http.StatusInternalServerError, Message: "failed to fetch image", Err: err}
	}
	if !resp.OK() {
		return nil, &normalize.UpstreamError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("image host returned status %d", resp.StatusCode),
		}
	}
	return resp, nil
}
