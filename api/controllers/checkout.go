package controllers

import (
	"net/http"

	"github.com/huettenzauber/kiosk/api/responses"
	"github.com/huettenzauber/kiosk/api/validators"
	checkoutsvc "github.com/huettenzauber/kiosk/internal/checkout"
	pkgerrors "github.com/huettenzauber/kiosk/pkg/errors"
	"github.com/huettenzauber/kiosk/pkg/logger"
	"github.com/shopspring/decimal"
)

type CheckoutRequest struct {
	ReceivedAmount *decimal.Decimal `json:"receivedAmount"`
}

// CheckoutSummary quotes totals and, with ?received=, the change due.
func CheckoutSummary(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		received, err := validators.ParseQueryDecimal(r, "received")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.Summary(received))
	}
}

// Checkout submits the cart as a bill. The body is optional.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload CheckoutRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Checkout(r.Context(), checkoutsvc.Input{ReceivedAmount: payload.ReceivedAmount})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}
