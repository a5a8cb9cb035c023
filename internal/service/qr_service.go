package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/hari13172/alumni-portal-api/internal/dto"
	appErrors "github.com/hari13172/alumni-portal-api/pkg/errors"
)

// QRConfig configures QR resolution and generation.
type QRConfig struct {
	// PublicOrigin is the portal's externally visible origin, e.g.
	// "https://alumni.example.edu". Payloads on this origin resolve to
	// in-app navigation.
	PublicOrigin string
	// Size is the pixel width of generated profile codes.
	Size int
}

// QRService resolves scanned QR payloads and renders profile codes.
type QRService struct {
	origin string
	size   int
}

// NewQRService constructs the QR service.
func NewQRService(cfg QRConfig) *QRService {
	size := cfg.Size
	if size <= 0 {
		size = 256
	}
	return &QRService{origin: strings.TrimRight(cfg.PublicOrigin, "/"), size: size}
}

// Resolve classifies a decoded QR payload. Same-origin URLs become an
// in-app navigation to their path, any other absolute URL becomes a full
// redirect, and anything unparseable is rejected.
func (s *QRService) Resolve(payload string) (*dto.ResolveQRResponse, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidQR, "empty QR payload")
	}

	parsed, err := url.Parse(payload)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidQR, "QR payload is not a valid URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, appErrors.Clone(appErrors.ErrInvalidQR, fmt.Sprintf("unsupported URL scheme %q", parsed.Scheme))
	}

	if s.sameOrigin(parsed) {
		path := parsed.Path
		if path == "" {
			path = "/"
		}
		if parsed.RawQuery != "" {
			path += "?" + parsed.RawQuery
		}
		return &dto.ResolveQRResponse{Action: dto.QRActionNavigate, Path: path}, nil
	}
	return &dto.ResolveQRResponse{Action: dto.QRActionRedirect, URL: parsed.String()}, nil
}

// ProfileCode renders a PNG QR code pointing at the public profile page.
func (s *QRService) ProfileCode(profileID string) ([]byte, error) {
	target := fmt.Sprintf("%s/alumni/%s", s.origin, profileID)
	png, err := qrcode.Encode(target, qrcode.Medium, s.size)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render QR code")
	}
	return png, nil
}

func (s *QRService) sameOrigin(u *url.URL) bool {
	origin, err := url.Parse(s.origin)
	if err != nil || origin.Host == "" {
		return false
	}
	return strings.EqualFold(u.Scheme, origin.Scheme) && strings.EqualFold(u.Host, origin.Host)
}
