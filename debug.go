package pinboard

import (
	"log/slog"
	"time"
)

// debugStats holds per-batch gesture metrics.
// Only populated when Board.debug is true.
type debugStats struct {
	batches      int
	actions      int
	lastDuration time.Duration
	maxDuration  time.Duration
	byKind       [ActionTap + 1]int
}

// DebugStats is a snapshot of the board's gesture metrics.
type DebugStats struct {
	Batches      int
	Actions      int
	LastDuration time.Duration
	MaxDuration  time.Duration
	ByKind       map[ActionKind]int
}

// SetDebugMode enables per-batch timing and action counters. Each batch is
// also logged at debug level.
func (b *Board) SetDebugMode(enabled bool) {
	b.debug = enabled
	if !enabled {
		b.stats = debugStats{}
	}
}

// DebugStats returns the counters gathered since debug mode was enabled.
func (b *Board) DebugStats() DebugStats {
	out := DebugStats{
		Batches:      b.stats.batches,
		Actions:      b.stats.actions,
		LastDuration: b.stats.lastDuration,
		MaxDuration:  b.stats.maxDuration,
		ByKind:       make(map[ActionKind]int),
	}
	for k, n := range b.stats.byKind {
		if n > 0 {
			out.ByKind[ActionKind(k)] = n
		}
	}
	return out
}

func (b *Board) recordBatch(pointers int, actions []Action, d time.Duration) {
	if !b.debug {
		return
	}
	b.stats.batches++
	b.stats.actions += len(actions)
	b.stats.lastDuration = d
	if d > b.stats.maxDuration {
		b.stats.maxDuration = d
	}
	for _, a := range actions {
		if int(a.Kind) < len(b.stats.byKind) {
			b.stats.byKind[a.Kind]++
		}
	}
	b.logger.Debug("pointer batch",
		slog.Int("pointers", pointers),
		slog.Int("actions", len(actions)),
		slog.String("state", b.gestures.State().String()),
		slog.Duration("took", d),
		slog.Float64("scale", b.transform.Scale),
	)
}

// debugMaxBatchPointers is the pointer count above which a batch is reported
// as suspicious.
const debugMaxBatchPointers = 10

// debugCheckBatch warns when a batch looks malformed. Only called in debug
// mode.
func (b *Board) debugCheckBatch(pointers []Pointer) {
	if !b.debug {
		return
	}
	if len(pointers) > debugMaxBatchPointers {
		b.logger.Warn("unusually large pointer batch", "pointers", len(pointers))
	}
	seen := make(map[int]struct{}, len(pointers))
	for _, p := range pointers {
		if _, dup := seen[p.ID]; dup {
			b.logger.Warn("duplicate pointer id in batch", "id", p.ID)
		}
		seen[p.ID] = struct{}{}
		if !p.Position.finite() {
			b.logger.Warn("non-finite pointer position", "id", p.ID)
		}
	}
}
