// Package catalog exposes the ordered list of prepaid cards offered on the
// card-selection screens.
package catalog

import "context"

// Entry is one catalog card.
type Entry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IconRef    string `json:"icon_ref,omitempty"`
	ColorClass string `json:"color_class,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
}

// Provider returns the catalog in display order. Consumed once at startup
// by the Guest/Verify/Buy card-selection steps.
type Provider interface {
	List(ctx context.Context) ([]Entry, error)
}

// StaticProvider serves a fixed in-memory catalog, used when no database is
// configured and by tests.
type StaticProvider struct {
	entries []Entry
}

// NewStaticProvider builds a provider over a fixed entry list.
func NewStaticProvider(entries []Entry) *StaticProvider {
	return &StaticProvider{entries: entries}
}

// List returns the configured entries.
func (p *StaticProvider) List(context.Context) ([]Entry, error) {
	result := make([]Entry, len(p.entries))
	copy(result, p.entries)
	return result, nil
}

// DefaultEntries is the seed catalog.
func DefaultEntries() []Entry {
	return []Entry{
		{ID: "transcash", Name: "Transcash", IconRef: "credit-card", ColorClass: "text-red-500"},
		{ID: "neosurf", Name: "Neosurf", IconRef: "globe", ColorClass: "text-pink-500"},
		{ID: "pcs", Name: "PCS", IconRef: "credit-card", ColorClass: "text-orange-500"},
		{ID: "paysafecard", Name: "Paysafecard", IconRef: "credit-card", ColorClass: "text-blue-500"},
		{ID: "flexepin", Name: "Flexepin", IconRef: "credit-card", ColorClass: "text-purple-500"},
		{ID: "google", Name: "Google Play", IconRef: "gamepad", ColorClass: "text-green-500"},
		{ID: "amazon", Name: "Amazon", IconRef: "shopping-cart", ColorClass: "text-amber-500"},
		{ID: "itunes", Name: "iTunes", IconRef: "music", ColorClass: "text-slate-500"},
		{ID: "steam", Name: "Steam", IconRef: "gamepad", ColorClass: "text-indigo-500"},
	}
}
