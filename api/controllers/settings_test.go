package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/huettenzauber/kiosk/pkg/enums"
	"github.com/shopspring/decimal"
)

type stubSettings struct {
	theme enums.Theme
	price *decimal.Decimal
}

func (s *stubSettings) Theme(context.Context) enums.Theme { return s.theme }

func (s *stubSettings) SetTheme(_ context.Context, theme enums.Theme) error {
	s.theme = theme
	return nil
}

func (s *stubSettings) DepositReturnPrice(context.Context) (decimal.Decimal, bool) {
	if s.price == nil {
		return decimal.Zero, false
	}
	return *s.price, true
}

func (s *stubSettings) SetDepositReturnPrice(_ context.Context, price decimal.Decimal) error {
	s.price = &price
	return nil
}

func (s *stubSettings) RememberDepositReturnPrice(ctx context.Context, price decimal.Decimal) error {
	return s.SetDepositReturnPrice(ctx, price)
}

func TestThemeEndpoints(t *testing.T) {
	svc := &stubSettings{theme: enums.ThemeLight}

	resp := httptest.NewRecorder()
	SettingsPutTheme(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPut, "/theme", strings.NewReader(`{"theme":"dark"}`)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.theme != enums.ThemeDark {
		t.Fatalf("expected dark theme, got %q", svc.theme)
	}

	resp = httptest.NewRecorder()
	SettingsPutTheme(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPut, "/theme", strings.NewReader(`{"theme":"neon"}`)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	SettingsGetTheme(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/theme", nil))
	var envelope struct {
		Data ThemePayload `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Theme != "dark" {
		t.Fatalf("unexpected theme %q", envelope.Data.Theme)
	}
}

func TestDepositReturnPriceEndpoints(t *testing.T) {
	svc := &stubSettings{}

	resp := httptest.NewRecorder()
	SettingsGetDepositReturnPrice(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/deposit-return-price", nil))
	if !strings.Contains(resp.Body.String(), `"price":null`) {
		t.Fatalf("expected null price, got %s", resp.Body.String())
	}

	resp = httptest.NewRecorder()
	SettingsPutDepositReturnPrice(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPut, "/deposit-return-price", strings.NewReader(`{"price":"2.00"}`)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.price == nil || !svc.price.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("unexpected stored price %v", svc.price)
	}

	resp = httptest.NewRecorder()
	SettingsPutDepositReturnPrice(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPut, "/deposit-return-price", strings.NewReader(`{}`)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
