package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/floravia/storefront/internal/schedule"
)

// Slots handles GET /api/slots?date=YYYY-MM-DD&mode=delivery|pickup and
// returns the bookable windows for that date.
func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	mode, err := schedule.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	cfg, now, err := h.shopClock(r)
	if err != nil {
		internalError(w, r, err)
		return
	}

	slots, err := schedule.Generate(r.URL.Query().Get("date"), mode, cfg, now)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidDate) {
			writeError(w, r, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
			return
		}
		internalError(w, r, err)
		return
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("slots", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, s := range slots {
					e.Obj(func(e *jx.Encoder) {
						e.Field("value", func(e *jx.Encoder) { e.Str(s.Label) })
						e.Field("label", func(e *jx.Encoder) { e.Str(s.Label) })
					})
				}
			})
		})
	})
	writeJSON(w, r, http.StatusOK, &e)
}

// Availability handles GET /api/availability?mode=… and reports whether an
// ASAP order can be placed right now.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	mode, err := schedule.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	cfg, now, err := h.shopClock(r)
	if err != nil {
		internalError(w, r, err)
		return
	}

	av := schedule.CheckOpen(mode, cfg, now)

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("isOpen", func(e *jx.Encoder) { e.Bool(av.Open) })
		e.Field("reason", func(e *jx.Encoder) { e.Str(av.Reason) })
	})
	writeJSON(w, r, http.StatusOK, &e)
}

// shopClock loads the scheduling config and localizes "now" to the shop
// timezone, so every downstream computation receives an explicit clock.
func (h *Handler) shopClock(r *http.Request) (*schedule.Config, time.Time, error) {
	st, err := h.settings.Get(r.Context())
	if err != nil {
		return nil, time.Time{}, err
	}
	loc, err := st.Hours.Location()
	if err != nil {
		return nil, time.Time{}, err
	}
	return &st.Hours, h.now().In(loc), nil
}
