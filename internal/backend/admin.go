package backend

import (
	"context"
	"net/http"
)

type AuditorImage struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

func (c Client) ListAuditorImages(ctx context.Context) ([]AuditorImage, error) {
	var out []AuditorImage
	if err := c.doJSON(ctx, "auditor-images", http.MethodGet, "/admin/auditors/images", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []AuditorImage{}
	}
	return out, nil
}
