package page

import "time"

// PlaceholderContent is the body every new page starts with.
const PlaceholderContent = "<p>Start writing here...</p>"

// MaxNameLength bounds display names and titles supplied on create.
const MaxNameLength = 255

// Page is a rich-text document owned by exactly one user. A page is either
// active (IsTrashed false, TrashedAt nil) or in the trash (IsTrashed true,
// TrashedAt set); nothing else is a valid state.
type Page struct {
	ID          string     `json:"id" bson:"_id"`
	OwnerID     string     `json:"owner_id" bson:"owner_id"`
	DisplayName string     `json:"display_name" bson:"display_name"`
	Title       string     `json:"title" bson:"title"`
	Content     string     `json:"content" bson:"content"`
	IsTrashed   bool       `json:"is_trashed" bson:"is_trashed"`
	TrashedAt   *time.Time `json:"trashed_at" bson:"trashed_at"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// Summary is the navigation entry for an active page.
type Summary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// TrashedSummary is the trash-bin entry for a trashed page.
type TrashedSummary struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	TrashedAt   time.Time `json:"trashed_at"`
}

// Edit carries the three mutable fields. Updates always overwrite all of them.
type Edit struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	DisplayName string `json:"display_name"`
}

// EditOf returns the mutable fields of p.
func EditOf(p *Page) Edit {
	return Edit{Title: p.Title, Content: p.Content, DisplayName: p.DisplayName}
}

// Summarize returns the navigation entry for p.
func (p *Page) Summarize() Summary {
	return Summary{ID: p.ID, DisplayName: p.DisplayName}
}
