package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huettenzauber/kiosk/api/responses"
	"github.com/huettenzauber/kiosk/api/validators"
	cartsvc "github.com/huettenzauber/kiosk/internal/cart"
	pkgerrors "github.com/huettenzauber/kiosk/pkg/errors"
	"github.com/huettenzauber/kiosk/pkg/logger"
	"github.com/shopspring/decimal"
)

// Service is the cart surface the handlers need.
type Service interface {
	State() cartsvc.State
	ItemQuantity(stockItemID, variantID int64) int
	AddItem(ctx context.Context, item cartsvc.ItemInput) (cartsvc.State, error)
	RemoveItem(ctx context.Context, id string) cartsvc.State
	UpdateQuantity(ctx context.Context, id string, quantity int) cartsvc.State
	IncreaseQuantity(ctx context.Context, id string) cartsvc.State
	DecreaseQuantity(ctx context.Context, id string) cartsvc.State
	ClearCart(ctx context.Context) cartsvc.State
	CleanupZeroQuantity(ctx context.Context) cartsvc.State
	SetDepositReturn(ctx context.Context, pricePerItem decimal.Decimal, quantity int) cartsvc.State
	Subscribe() *cartsvc.Observer
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
}

// CartFetch returns the current cart snapshot.
func CartFetch(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		responses.WriteSuccess(w, svc.State())
	}
}

func CartClear(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		responses.WriteSuccess(w, svc.ClearCart(r.Context()))
	}
}

func CartAddItem(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}

		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.AddItem(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, state)
	}
}

func CartUpdateQuantity(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}

		var payload UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), *payload.Quantity))
	}
}

func CartRemoveItem(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		responses.WriteSuccess(w, svc.RemoveItem(r.Context(), chi.URLParam(r, "id")))
	}
}

func CartIncrease(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		responses.WriteSuccess(w, svc.IncreaseQuantity(r.Context(), chi.URLParam(r, "id")))
	}
}

func CartDecrease(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		responses.WriteSuccess(w, svc.DecreaseQuantity(r.Context(), chi.URLParam(r, "id")))
	}
}

func CartCleanup(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		responses.WriteSuccess(w, svc.CleanupZeroQuantity(r.Context()))
	}
}

func CartSetDepositReturn(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}

		var payload DepositReturnRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.SetDepositReturn(r.Context(), payload.PricePerItem, payload.Quantity))
	}
}

// CartItemQuantity answers the order screen's per-variant badge.
func CartItemQuantity(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}

		stockItemID, err := validators.ParseQueryInt64(r, "stock_item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := validators.ParseQueryInt64(r, "variant_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, QuantityResponse{
			StockItemID: stockItemID,
			VariantID:   variantID,
			Quantity:    svc.ItemQuantity(stockItemID, variantID),
		})
	}
}
