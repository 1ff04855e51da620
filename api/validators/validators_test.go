package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	pkgerrors "github.com/huettenzauber/kiosk/pkg/errors"
)

type sampleBody struct {
	Name     string  `json:"name" validate:"required,max=5"`
	Quantity int     `json:"quantity" validate:"gte=0"`
	Price    float64 `json:"price" validate:"gt=0"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"toolong","quantity":-1,"price":0}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	for _, field := range []string{"name", "quantity", "price"} {
		if _, ok := details[field]; !ok {
			t.Fatalf("expected detail for %s, got %v", field, details)
		}
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","price":1,"extra":true}`))
	var body sampleBody
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type nestedLine struct {
	Price float64 `json:"price" validate:"gte=0"`
}

type nestedBody struct {
	Lines []nestedLine `json:"lines" validate:"required,min=1,dive"`
}

func TestDecodeJSONBodyNestedFieldPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"lines":[{"price":1},{"price":-2}]}`))
	var body nestedBody
	typed := pkgerrors.As(DecodeJSONBody(req, &body))
	if typed == nil {
		t.Fatal("expected validation error")
	}
	details := typed.Details().(map[string]string)
	if _, ok := details["lines[1].price"]; !ok {
		t.Fatalf("expected nested path, got %v", details)
	}
}

func TestDecodeJSONBodyRejectsEmptyAndTrailing(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	var body sampleBody
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty body, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","price":1}{"name":"b"}`))
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for trailing object, got %v", err)
	}
}

func TestDecodeOptionalJSONBodyAcceptsEmpty(t *testing.T) {
	var body sampleBody
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if err := DecodeOptionalJSONBody(req, &body); err != nil {
		t.Fatalf("expected empty body to pass, got %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := DecodeOptionalJSONBody(req, &body); err != nil {
		t.Fatalf("expected blank body to pass, got %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"toolong","price":1}`))
	if err := DecodeOptionalJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?id=7&flag=true&amount=2,50&bad=x", nil)

	if v, err := ParseQueryInt64(req, "id"); err != nil || v != 7 {
		t.Fatalf("unexpected int64 %d %v", v, err)
	}
	if _, err := ParseQueryInt64(req, "missing"); err == nil {
		t.Fatal("expected error for missing id")
	}
	if v, err := ParseQueryBool(req, "flag", false); err != nil || !v {
		t.Fatalf("unexpected bool %v %v", v, err)
	}
	if _, err := ParseQueryBool(req, "bad", false); err == nil {
		t.Fatal("expected error for bad bool")
	}
	amount, err := ParseQueryDecimal(req, "amount")
	if err != nil || amount == nil || amount.String() != "2.5" {
		t.Fatalf("unexpected decimal %v %v", amount, err)
	}
	if amount, err := ParseQueryDecimal(req, "none"); err != nil || amount != nil {
		t.Fatalf("expected nil decimal, got %v %v", amount, err)
	}
}

func TestParseIDParam(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "12")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	if v, err := ParseIDParam(req, "id"); err != nil || v != 12 {
		t.Fatalf("unexpected id %d %v", v, err)
	}
	rctx.URLParams = chi.RouteParams{}
	rctx.URLParams.Add("id", "abc")
	if _, err := ParseIDParam(req, "id"); err == nil {
		t.Fatal("expected error for non numeric id")
	}
}
