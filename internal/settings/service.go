// Package settings persists the small per-device preferences the kiosk UI
// restores on start.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/huettenzauber/kiosk/pkg/errors"
	"github.com/huettenzauber/kiosk/pkg/enums"
	"github.com/huettenzauber/kiosk/pkg/logger"
	"github.com/huettenzauber/kiosk/pkg/storage"
	"github.com/shopspring/decimal"
)

const DefaultTheme = enums.ThemeLight

type Service interface {
	Theme(ctx context.Context) enums.Theme
	SetTheme(ctx context.Context, theme enums.Theme) error
	DepositReturnPrice(ctx context.Context) (decimal.Decimal, bool)
	SetDepositReturnPrice(ctx context.Context, price decimal.Decimal) error
	RememberDepositReturnPrice(ctx context.Context, price decimal.Decimal) error
}

type service struct {
	store storage.Store
	logg  *logger.Logger
}

func NewService(store storage.Store, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{store: store, logg: logg}, nil
}

// Theme returns the stored theme, or the default when nothing valid is stored.
func (s *service) Theme(ctx context.Context) enums.Theme {
	raw, ok := s.read(ctx, storage.KeyTheme)
	if !ok {
		return DefaultTheme
	}
	theme, err := enums.ParseTheme(raw)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "value", raw), "settings.invalid_theme")
		return DefaultTheme
	}
	return theme
}

func (s *service) SetTheme(ctx context.Context, theme enums.Theme) error {
	if !theme.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid theme %q", theme).
			WithDetails(map[string]string{"theme": "must be light or dark"})
	}
	if err := s.store.Set(ctx, storage.KeyTheme, theme.String()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store theme")
	}
	return nil
}

// DepositReturnPrice returns the last remembered unit price. The bool is
// false when none is stored or the stored value is unusable.
func (s *service) DepositReturnPrice(ctx context.Context) (decimal.Decimal, bool) {
	raw, ok := s.read(ctx, storage.KeyDepositReturnPrice)
	if !ok {
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(raw)
	if err != nil || price.IsNegative() {
		s.logg.Warn(s.logg.WithField(ctx, "value", raw), "settings.invalid_deposit_return_price")
		return decimal.Zero, false
	}
	return price, true
}

func (s *service) SetDepositReturnPrice(ctx context.Context, price decimal.Decimal) error {
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "deposit return price must not be negative").
			WithDetails(map[string]string{"price": "must not be negative"})
	}
	if !price.Equal(price.Round(2)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "deposit return price has more than two decimal places").
			WithDetails(map[string]string{"price": "at most two decimal places"})
	}
	if err := s.store.Set(ctx, storage.KeyDepositReturnPrice, price.StringFixed(2)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store deposit return price")
	}
	return nil
}

// RememberDepositReturnPrice stores price when it is positive and ignores it
// otherwise.
func (s *service) RememberDepositReturnPrice(ctx context.Context, price decimal.Decimal) error {
	if !price.IsPositive() {
		return nil
	}
	return s.SetDepositReturnPrice(ctx, price)
}

func (s *service) read(ctx context.Context, key string) (string, bool) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logg.Error(s.logg.WithField(ctx, "key", key), "settings.read_failed", err)
		}
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
