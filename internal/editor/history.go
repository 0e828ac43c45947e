package editor

import (
	"bytes"
	"time"
)

// History is a linear list of scene snapshots with a cursor. Index 0 is the
// document the session started from.
type History struct {
	snapshots  []Document
	index      int
	limit      int
	window     time.Duration
	now        func() time.Time
	lastRecord time.Time
}

// NewHistory starts a history at initial. A limit of 0 keeps every
// snapshot; otherwise the oldest ones slide off. Records closer together
// than window are merged into one step.
func NewHistory(initial Document, limit int, window time.Duration, now func() time.Time) *History {
	if now == nil {
		now = time.Now
	}
	if limit == 1 {
		// one slot could never be undone to
		limit = 2
	}
	return &History{
		snapshots: []Document{bytes.Clone(initial)},
		limit:     limit,
		window:    window,
		now:       now,
	}
}

// Record appends doc after the cursor, dropping any redo future. When the
// previous record was inside the coalescing window it replaces that
// snapshot instead, unless skipCoalesce is set. A skipped record is also
// never merged into by the next one.
func (h *History) Record(doc Document, skipCoalesce bool) {
	now := h.now()
	doc = bytes.Clone(doc)
	h.snapshots = h.snapshots[:h.index+1]

	if !skipCoalesce && h.coalescing(now) {
		h.snapshots[h.index] = doc
		h.lastRecord = now
		return
	}

	h.snapshots = append(h.snapshots, doc)
	h.index++
	h.lastRecord = now
	if skipCoalesce {
		h.lastRecord = time.Time{}
	}

	if h.limit > 0 && len(h.snapshots) > h.limit {
		drop := len(h.snapshots) - h.limit
		h.snapshots = append([]Document(nil), h.snapshots[drop:]...)
		h.index -= drop
	}
}

func (h *History) coalescing(now time.Time) bool {
	if h.window <= 0 || h.index == 0 || h.lastRecord.IsZero() {
		return false
	}
	return now.Sub(h.lastRecord) < h.window
}

// Undo moves the cursor back and returns the snapshot to apply.
func (h *History) Undo() (Document, bool) {
	if h.index == 0 {
		return nil, false
	}
	h.index--
	h.lastRecord = time.Time{}
	return h.snapshots[h.index], true
}

// Redo moves the cursor forward and returns the snapshot to apply.
func (h *History) Redo() (Document, bool) {
	if h.index >= len(h.snapshots)-1 {
		return nil, false
	}
	h.index++
	h.lastRecord = time.Time{}
	return h.snapshots[h.index], true
}

// seek puts the cursor back where it was after a failed apply.
func (h *History) seek(index int) {
	if index < 0 || index >= len(h.snapshots) {
		return
	}
	h.index = index
}

func (h *History) Current() Document { return h.snapshots[h.index] }
func (h *History) Len() int          { return len(h.snapshots) }
func (h *History) Index() int        { return h.index }
func (h *History) CanUndo() bool     { return h.index > 0 }
func (h *History) CanRedo() bool     { return h.index < len(h.snapshots)-1 }
