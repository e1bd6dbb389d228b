package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/floravia/storefront/internal/promo"
)

// ValidatePromo handles POST /api/promo/validate with body {"code": "..."}.
// Every failed resolution — unknown, inactive, or expired code — yields the
// same 404 outcome.
func (h *Handler) ValidatePromo(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "read request body")
		return
	}

	var code string
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key == "code" {
			code, err = d.Str()
			return err
		}
		return d.Skip()
	}); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if code == "" {
		writeError(w, r, http.StatusBadRequest, "code is required")
		return
	}

	_, now, err := h.shopClock(r)
	if err != nil {
		internalError(w, r, err)
		return
	}

	resolved, err := h.promos.Resolve(r.Context(), code, now)
	if err != nil {
		if errors.Is(err, promo.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "promo code not found, expired or inactive")
			return
		}
		internalError(w, r, err)
		return
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Str(resolved.Code) })
		e.Field("discountPercent", func(e *jx.Encoder) { e.Int(resolved.DiscountPercent) })
	})
	writeJSON(w, r, http.StatusOK, &e)
}
