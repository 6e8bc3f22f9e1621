package controllers

import (
	"net/http"

	"github.com/angelmondragon/cinecart/api/middleware"
	"github.com/angelmondragon/cinecart/api/responses"
	"github.com/angelmondragon/cinecart/api/validators"
	"github.com/angelmondragon/cinecart/internal/checkout"
	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
	"github.com/angelmondragon/cinecart/pkg/logger"
)

type fieldPayload struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

type fieldResult struct {
	Field checkout.Field `json:"field"`
	Value string         `json:"value"`
	Valid bool           `json:"valid"`
	Error string         `json:"error,omitempty"`
}

type formPayload struct {
	Values  map[string]string `json:"values"`
	Touched map[string]bool   `json:"touched"`
}

// toForm replays every submitted value through Change so masks are applied
// server side too.
func (p formPayload) toForm() (*checkout.Form, error) {
	form := checkout.NewForm()
	unknown := map[string]string{}
	for name, value := range p.Values {
		field, ok := checkout.ParseField(name)
		if !ok {
			unknown[name] = "unknown field"
			continue
		}
		form.Change(field, value)
	}
	for name, touched := range p.Touched {
		field, ok := checkout.ParseField(name)
		if !ok {
			unknown[name] = "unknown field"
			continue
		}
		if touched {
			form.Touched[field] = true
		}
	}
	if len(unknown) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown checkout fields").WithDetails(unknown)
	}
	return form, nil
}

func parseField(name string) (checkout.Field, error) {
	field, ok := checkout.ParseField(name)
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown checkout field").WithDetails(map[string]string{"field": name})
	}
	return field, nil
}

// CheckoutMask applies a field's input mask.
func CheckoutMask(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload fieldPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		field, err := parseField(payload.Field)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"field": field, "value": checkout.Mask(field, payload.Value)})
	}
}

// CheckoutValidateField masks and validates a single field, as on blur.
func CheckoutValidateField(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload fieldPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		field, err := parseField(payload.Field)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		masked, msg := checkout.MaskAndCheck(field, payload.Value)
		responses.WriteSuccess(w, fieldResult{Field: field, Value: masked, Valid: msg == "", Error: msg})
	}
}

// CheckoutAutofill runs the CEP blur and returns the updated form.
func CheckoutAutofill(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload formPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		form, err := payload.toForm()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, svc.Autofill(ctx, form))
	}
}

// CheckoutSubmit validates the form against the session cart and returns the
// simulated confirmation.
func CheckoutSubmit(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload formPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		form, err := payload.toForm()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		confirmation, err := svc.Submit(ctx, middleware.SessionIDFromContext(ctx), form)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, confirmation)
	}
}

// CheckoutComplete closes the confirmation and empties the cart.
func CheckoutComplete(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		view, err := svc.Complete(ctx, middleware.SessionIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
