package provider

import "strings"

// Webhook status values sent by fal.ai.
const (
	WebhookStatusOK    = "OK"
	WebhookStatusError = "ERROR"
)

// Image is one generated output.
type Image struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	FileSize    int64  `json:"file_size,omitempty"`
}

// Result is the model output carried by a successful webhook.
type Result struct {
	Images      []Image `json:"images,omitempty"`
	Description string  `json:"description,omitempty"`
}

// WebhookPayload is the body fal.ai posts when a queued job finishes.
type WebhookPayload struct {
	RequestID        string  `json:"request_id"`
	GatewayRequestID string  `json:"gateway_request_id,omitempty"`
	Status           string  `json:"status"`
	Payload          *Result `json:"payload,omitempty"`
	Error            string  `json:"error,omitempty"`
}

// ImageURL returns the first produced image when the job succeeded.
func (p *WebhookPayload) ImageURL() (string, bool) {
	if !strings.EqualFold(p.Status, WebhookStatusOK) || p.Payload == nil {
		return "", false
	}
	for _, img := range p.Payload.Images {
		if img.URL != "" {
			return img.URL, true
		}
	}
	return "", false
}
