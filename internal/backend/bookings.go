package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"energyportal/internal/progress"
)

type ServiceDetail struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Images      []string        `json:"images"`
	Price       decimal.Decimal `json:"price"`
	Duration    string          `json:"duration,omitempty"`
	Description string          `json:"description,omitempty"`
}

type Video struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	URL             string `json:"url"`
	ThumbnailURL    string `json:"thumbnailUrl,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

type UpdateAuditorRequest struct {
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description,omitempty"`
}

func (c Client) GetService(ctx context.Context, id string) (*ServiceDetail, error) {
	var out ServiceDetail
	if err := c.doJSON(ctx, "get-service", http.MethodGet, "/booking/services/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c Client) GetBooking(ctx context.Context, bookingNumber string) (*progress.Booking, error) {
	var out progress.Booking
	if err := c.doJSON(ctx, "get-booking", http.MethodGet, bookingPath(bookingNumber), nil, &out); err != nil {
		return nil, err
	}
	if out.BookingNumber == "" {
		out.BookingNumber = bookingNumber
	}
	return &out, nil
}

func (c Client) RecommendedVideos(ctx context.Context, bookingNumber string) ([]Video, error) {
	var out []Video
	if err := c.doJSON(ctx, "recommended-videos", http.MethodGet, bookingPath(bookingNumber)+"/recommended-videos", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Video{}
	}
	return out, nil
}

func (c Client) UpdateAuditor(ctx context.Context, bookingNumber string, req UpdateAuditorRequest) error {
	return c.doJSON(ctx, "update-auditor", http.MethodPut, bookingPath(bookingNumber)+"/auditor", req, nil)
}

func bookingPath(bookingNumber string) string {
	return "/user/bookings/" + url.PathEscape(bookingNumber)
}
