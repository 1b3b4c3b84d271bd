package domain

import (
	"time"
)

// Color palette options for poll display
const (
	PaletteLehighSoft = "lehigh_soft"
	PaletteVibrant    = "vibrant"
	PalettePastel     = "pastel"
	PaletteDark       = "dark"
)

// Display defaults applied at creation
const (
	DefaultColorPalette  = PaletteLehighSoft
	DefaultSlideDuration = 3
)

// Poll represents a poll identified publicly by its slug
type Poll struct {
	ID              int64       `json:"id"`
	Slug            string      `json:"slug"`
	Title           string      `json:"title"`
	IsActive        bool        `json:"is_active"`
	CreatedAt       time.Time   `json:"created_at"`
	ClosedAt        *time.Time  `json:"closed_at,omitempty"` // Actual close time, manual or scheduled
	ClosesAt        *time.Time  `json:"closes_at,omitempty"` // Auto-close schedule
	ColorPalette    string      `json:"color_palette"`
	SlideDuration   int         `json:"slide_duration"`
	EnableTitlePage bool        `json:"enable_title_page"`
	OwnerID         int64       `json:"owner_id"`
	Questions       []*Question `json:"questions"`
}

// ScheduleElapsed reports whether the poll's auto-close schedule has passed.
// A poll whose schedule has elapsed must be treated as closed by every
// reader, even if no writer has materialized the transition yet.
func (p *Poll) ScheduleElapsed(now time.Time) bool {
	return p.ClosesAt != nil && !p.ClosesAt.After(now)
}

// PollCreateRequest is the payload for creating a poll
type PollCreateRequest struct {
	Title           string     `json:"title"`
	ClosesAt        *time.Time `json:"closes_at,omitempty"`
	ColorPalette    string     `json:"color_palette,omitempty"`
	SlideDuration   int        `json:"slide_duration,omitempty"`
	EnableTitlePage bool       `json:"enable_title_page,omitempty"`
}

// PollUpdateRequest is the payload for partially updating a poll. Each field
// distinguishes omitted from explicitly provided, so clients can clear a
// schedule by sending an explicit null rather than dropping the field.
type PollUpdateRequest struct {
	Title           Optional[string]    `json:"title"`
	ClosesAt        Optional[time.Time] `json:"closes_at"`
	ColorPalette    Optional[string]    `json:"color_palette"`
	SlideDuration   Optional[int]       `json:"slide_duration"`
	EnableTitlePage Optional[bool]      `json:"enable_title_page"`
}

// ValidPalette reports whether the given palette name is one of the known sets
func ValidPalette(name string) bool {
	switch name {
	case PaletteLehighSoft, PaletteVibrant, PalettePastel, PaletteDark:
		return true
	}
	return false
}
