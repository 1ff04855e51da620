package cart

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	cartsvc "github.com/huettenzauber/kiosk/internal/cart"
	"github.com/huettenzauber/kiosk/pkg/logger"
	"github.com/huettenzauber/kiosk/pkg/types"
)

const (
	eventState        = "state"
	heartbeatInterval = 15 * time.Second
	eventStreamHeader = "text/event-stream"
)

// CartEvents streams every cart snapshot to the browser as server-sent
// events, starting with the current one.
func CartEvents(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}

		rc := http.NewResponseController(w)
		obs := svc.Subscribe()
		defer obs.Close()

		w.Header().Set("Content-Type", eventStreamHeader)
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		ctx := r.Context()
		if err := writeState(w, rc, svc.State()); err != nil {
			if logg != nil {
				logg.Error(ctx, "cart.events_write_failed", err)
			}
			return
		}
		if logg != nil {
			logg.Info(ctx, "cart.events_connected")
		}

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case state, ok := <-obs.C():
				if !ok {
					return
				}
				if err := writeState(w, rc, state); err != nil {
					return
				}
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				if err := rc.Flush(); err != nil {
					return
				}
			}
		}
	}
}

func writeState(w http.ResponseWriter, rc *http.ResponseController, state cartsvc.State) error {
	payload, err := json.Marshal(types.StreamEvent{Type: eventState, Data: state})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventState, payload); err != nil {
		return err
	}
	return rc.Flush()
}
