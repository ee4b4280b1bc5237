package models

import "fmt"

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility accepts "public" and "private"; an empty string means public.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case "", VisibilityPublic:
		return VisibilityPublic, nil
	case VisibilityPrivate:
		return VisibilityPrivate, nil
	default:
		return "", fmt.Errorf("unknown visibility %q", s)
	}
}

type Video struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Genre         string     `json:"genre,omitempty"`
	VideoFile     string     `json:"video_file"`
	ThumbnailFile string     `json:"thumbnail_file,omitempty"`
	Visibility    Visibility `json:"visibility,omitempty"`
	CreatedAt     string     `json:"created_at,omitempty"`
}
