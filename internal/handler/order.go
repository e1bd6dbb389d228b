package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/floravia/storefront/internal/catalog"
	"github.com/floravia/storefront/internal/checkout"
	"github.com/floravia/storefront/internal/promo"
	"github.com/floravia/storefront/internal/schedule"
)

// PlaceOrder handles POST /api/orders: it decodes the checkout request,
// delegates to the checkout service, and returns the persisted order with
// its pricing snapshot.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "read request body")
		return
	}

	req, err := decodeOrderRequest(body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed JSON body")
		return
	}

	order, err := h.checkout.PlaceOrder(r.Context(), req)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, encodeOrder(order))
}

// Products handles GET /api/products and lists the available catalog.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("products", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, p := range products {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
						e.Field("slug", func(e *jx.Encoder) { e.Str(p.Slug) })
						e.Field("category", func(e *jx.Encoder) { e.Str(p.Category) })
						e.Field("price", func(e *jx.Encoder) { money(e, p.Price) })
					})
				}
			})
		})
	})
	writeJSON(w, r, http.StatusOK, &e)
}

func decodeOrderRequest(body []byte) (checkout.PlaceOrderRequest, error) {
	var req checkout.PlaceOrderRequest
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				var item checkout.ItemRequest
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "productId":
						item.ProductID, err = d.Str()
					case "quantity":
						item.Quantity, err = d.Int()
					default:
						err = d.Skip()
					}
					return err
				}); err != nil {
					return err
				}
				req.Items = append(req.Items, item)
				return nil
			})
		case "mode":
			s, err := d.Str()
			req.Fulfillment.Mode = schedule.Mode(s)
			return err
		case "date":
			var err error
			req.Fulfillment.Date, err = d.Str()
			return err
		case "slot":
			var err error
			req.Fulfillment.SlotLabel, err = d.Str()
			return err
		case "asap":
			var err error
			req.Fulfillment.ASAP, err = d.Bool()
			return err
		case "promoCode":
			var err error
			req.PromoCode, err = d.Str()
			return err
		case "postcardId":
			var err error
			req.PostcardID, err = d.Str()
			return err
		case "postcardText":
			var err error
			req.PostcardText, err = d.Str()
			return err
		case "withCustomImage":
			var err error
			req.WithCustomImage, err = d.Bool()
			return err
		case "customer":
			return d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "firstName":
					req.Customer.FirstName, err = d.Str()
				case "lastName":
					req.Customer.LastName, err = d.Str()
				case "email":
					req.Customer.Email, err = d.Str()
				case "phone":
					req.Customer.Phone, err = d.Str()
				case "address":
					req.Customer.Address, err = d.Str()
				case "postalCode":
					req.Customer.PostalCode, err = d.Str()
				case "city":
					req.Customer.City, err = d.Str()
				default:
					err = d.Skip()
				}
				return err
			})
		default:
			return d.Skip()
		}
	})
	return req, err
}

func encodeOrder(o *checkout.Order) *jx.Encoder {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		e.Field("mode", func(e *jx.Encoder) { e.Str(string(o.Fulfillment.Mode)) })
		if o.Fulfillment.ASAP {
			e.Field("asap", func(e *jx.Encoder) { e.Bool(true) })
		} else {
			e.Field("date", func(e *jx.Encoder) { e.Str(o.Fulfillment.Date) })
			e.Field("slot", func(e *jx.Encoder) { e.Str(o.Fulfillment.SlotLabel) })
		}
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range o.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productId", func(e *jx.Encoder) { e.Str(item.ProductID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(item.Name) })
						e.Field("price", func(e *jx.Encoder) { money(e, item.UnitPrice) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
					})
				}
			})
		})
		e.Field("pricing", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("itemsCost", func(e *jx.Encoder) { money(e, o.Pricing.ItemsCost) })
				e.Field("discountAmount", func(e *jx.Encoder) { money(e, o.Pricing.DiscountAmount) })
				e.Field("deliveryCost", func(e *jx.Encoder) { money(e, o.Pricing.DeliveryCost) })
				e.Field("postcardCost", func(e *jx.Encoder) { money(e, o.Pricing.PostcardCost) })
				e.Field("total", func(e *jx.Encoder) { money(e, o.Pricing.Total) })
			})
		})
		e.Field("createdAt", func(e *jx.Encoder) { e.Str(o.CreatedAt.Format(time.RFC3339)) })
	})
	return &e
}

// money renders decimals with fixed two-digit precision so totals survive
// serialization bit-exactly.
func money(e *jx.Encoder, d decimal.Decimal) {
	e.Str(d.StringFixed(2))
}

func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		iqErr *checkout.InvalidQuantityError
		nfErr *checkout.ProductNotFoundError
		uaErr *checkout.ProductUnavailableError
		suErr *checkout.SlotUnavailableError
		clErr *checkout.ClosedError
	)

	switch {
	case errors.Is(err, checkout.ErrEmptyItems),
		errors.Is(err, schedule.ErrInvalidDate),
		errors.Is(err, schedule.ErrInvalidMode):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.As(err, &iqErr),
		errors.As(err, &nfErr),
		errors.As(err, &uaErr):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, promo.ErrNotFound):
		writeError(w, r, http.StatusUnprocessableEntity, "promo code not found, expired or inactive")
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, r, http.StatusUnprocessableEntity, "postcard not found")
	case errors.As(err, &suErr), errors.As(err, &clErr):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		internalError(w, r, err)
	}
}
