package controllers

import (
	"net/http"

	"github.com/huettenzauber/kiosk/api/responses"
	"github.com/huettenzauber/kiosk/api/validators"
	settingssvc "github.com/huettenzauber/kiosk/internal/settings"
	"github.com/huettenzauber/kiosk/pkg/enums"
	pkgerrors "github.com/huettenzauber/kiosk/pkg/errors"
	"github.com/huettenzauber/kiosk/pkg/logger"
	"github.com/shopspring/decimal"
)

type ThemePayload struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

type DepositReturnPricePayload struct {
	Price *decimal.Decimal `json:"price" validate:"required"`
}

func settingsUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings unavailable"))
}

func SettingsGetTheme(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			settingsUnavailable(w, r, logg)
			return
		}
		responses.WriteSuccess(w, ThemePayload{Theme: svc.Theme(r.Context()).String()})
	}
}

func SettingsPutTheme(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			settingsUnavailable(w, r, logg)
			return
		}

		var payload ThemePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		theme, err := enums.ParseTheme(payload.Theme)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid theme"))
			return
		}
		if err := svc.SetTheme(r.Context(), theme); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ThemePayload{Theme: theme.String()})
	}
}

// SettingsGetDepositReturnPrice returns {"price": null} when nothing is remembered.
func SettingsGetDepositReturnPrice(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			settingsUnavailable(w, r, logg)
			return
		}
		payload := DepositReturnPricePayload{}
		if price, ok := svc.DepositReturnPrice(r.Context()); ok {
			payload.Price = &price
		}
		responses.WriteSuccess(w, payload)
	}
}

func SettingsPutDepositReturnPrice(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			settingsUnavailable(w, r, logg)
			return
		}

		var payload DepositReturnPricePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetDepositReturnPrice(r.Context(), *payload.Price); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}
