package models

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// ViewedSet tracks which stories each viewer has seen.
type ViewedSet struct {
	mu      sync.RWMutex
	viewers map[string]*roaring64.Bitmap
}

func NewViewedSet() *ViewedSet {
	return &ViewedSet{viewers: make(map[string]*roaring64.Bitmap)}
}

// Mark records the view and reports whether it was the first one.
func (v *ViewedSet) Mark(viewerID string, storyID int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	bm, ok := v.viewers[viewerID]
	if !ok {
		bm = roaring64.New()
		v.viewers[viewerID] = bm
	}
	return bm.CheckedAdd(uint64(storyID))
}

func (v *ViewedSet) Has(viewerID string, storyID int64) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	bm, ok := v.viewers[viewerID]
	if !ok {
		return false
	}
	return bm.Contains(uint64(storyID))
}

// Forget removes a story from every viewer's set.
func (v *ViewedSet) Forget(storyID int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, bm := range v.viewers {
		bm.Remove(uint64(storyID))
	}
}

func (v *ViewedSet) Export() map[string][]uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string][]uint64, len(v.viewers))
	for viewer, bm := range v.viewers {
		out[viewer] = bm.ToArray()
	}
	return out
}

func (v *ViewedSet) Import(data map[string][]uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.viewers = make(map[string]*roaring64.Bitmap, len(data))
	for viewer, ids := range data {
		v.viewers[viewer] = roaring64.BitmapOf(ids...)
	}
}
