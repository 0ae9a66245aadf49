// Package items provides carried things and their optional capabilities.
package items

import (
	"github.com/google/uuid"

	"github.com/talgya/caravan-needs/internal/water"
)

// Thing is a single carried item. Capabilities are optional: a nil Storage means the
// thing holds no water, a nil Tier means its contamination was never classified.
type Thing struct {
	ID      uuid.UUID     `json:"id"`
	Kind    string        `json:"kind"`
	Storage *WaterStorage `json:"storage,omitempty"`
	Tier    *water.Tier   `json:"tier,omitempty"`

	// Inner is set for packed (minified) things; capabilities live on the inner thing.
	Inner *Thing `json:"inner,omitempty"`

	// Destroyed is set once the thing has been used up.
	Destroyed bool `json:"-"`
}

// WaterStorage is the water-holding capability of a tank or can.
type WaterStorage struct {
	Volume   float64    `json:"volume"`
	Capacity float64    `json:"capacity"`
	Quality  water.Tier `json:"quality"`
}

// New creates a thing from its catalog definition. Storage things start empty.
func New(def water.ItemDef) *Thing {
	t := &Thing{ID: uuid.New(), Kind: def.Kind}
	if def.HasStorage() {
		t.Storage = &WaterStorage{Capacity: def.WaterCapacity, Quality: water.Untreated}
	}
	return t
}

// Packed wraps inner as a minified thing of kind "minified_<inner kind>".
func Packed(inner *Thing) *Thing {
	return &Thing{ID: uuid.New(), Kind: "minified_" + inner.Kind, Inner: inner}
}

// WithTier sets an explicit contamination level and returns t.
func (t *Thing) WithTier(tier water.Tier) *Thing {
	t.Tier = &tier
	return t
}

// Filled sets stored water and returns t. Volume is capped at capacity.
func (t *Thing) Filled(volume float64, quality water.Tier) *Thing {
	if t.Storage == nil {
		return t
	}
	if volume > t.Storage.Capacity {
		volume = t.Storage.Capacity
	}
	if volume < 0 {
		volume = 0
	}
	t.Storage.Volume = volume
	t.Storage.Quality = quality
	return t
}

// Unwrap returns the packed inner thing, or t itself.
func (t *Thing) Unwrap() *Thing {
	if t != nil && t.Inner != nil {
		return t.Inner
	}
	return t
}

// WaterStorage returns the storage capability of the unwrapped thing.
func (t *Thing) WaterStorage() (*WaterStorage, bool) {
	inner := t.Unwrap()
	if inner == nil || inner.Storage == nil {
		return nil, false
	}
	return inner.Storage, true
}

// Contamination returns the explicit tier, if one was set.
func (t *Thing) Contamination() (water.Tier, bool) {
	if t == nil || t.Tier == nil {
		return 0, false
	}
	return *t.Tier, true
}

// Contamination of stored water is always known.
func (s *WaterStorage) Contamination() (water.Tier, bool) {
	return s.Quality, true
}

// Draw removes up to amount from storage and returns how much was removed.
func (s *WaterStorage) Draw(amount float64) float64 {
	if amount <= 0 || s.Volume <= 0 {
		return 0
	}
	if amount > s.Volume {
		amount = s.Volume
	}
	s.Volume -= amount
	return amount
}
