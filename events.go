package blockshard

import (
	"github.com/rotisserie/eris"
)

// flushEvents broadcasts the events emitted during tick and clears them. Without a server they are dropped.
func (w *World) flushEvents(tick uint64) {
	if len(w.events) == 0 {
		return
	}
	events := w.events
	w.events = nil
	if w.server == nil {
		return
	}
	if err := w.server.BroadcastEvent(TickEvents{Tick: tick, Events: events}); err != nil {
		w.logger.Warn().Uint64("tick", tick).Msgf("failed to broadcast events: %s", eris.ToString(err, true))
	}
}
