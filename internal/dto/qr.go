package dto

// QRAction tells the client how to act on a decoded QR payload.
type QRAction string

const (
	// QRActionNavigate means the decoded URL is same-origin and the
	// client should route to the path in-app.
	QRActionNavigate QRAction = "navigate"
	// QRActionRedirect means the decoded URL points elsewhere and the
	// client should perform a full redirect.
	QRActionRedirect QRAction = "redirect"
)

// ResolveQRRequest carries the raw text decoded from a QR frame.
type ResolveQRRequest struct {
	Payload string `json:"payload" validate:"required"`
}

// ResolveQRResponse describes the navigation decision for the payload.
type ResolveQRResponse struct {
	Action QRAction `json:"action"`
	Path   string   `json:"path,omitempty"`
	URL    string   `json:"url,omitempty"`
}
