package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/cinecart/internal/cart"
	formats "github.com/angelmondragon/cinecart/pkg/checkout"
	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
	"github.com/angelmondragon/cinecart/pkg/logger"
	"github.com/angelmondragon/cinecart/pkg/types"
	"github.com/google/uuid"
)

const (
	msgCEPNotFound   = "postal code not found"
	orderSuffixChars = 9
)

// AddressResolver looks up the address for a postal code.
type AddressResolver interface {
	Resolve(ctx context.Context, cep string) (types.Address, error)
}

// CartStore is the slice of the cart service checkout depends on.
type CartStore interface {
	Get(ctx context.Context, sessionID string) (cart.View, error)
	Clear(ctx context.Context, sessionID string) (cart.View, error)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Cart    CartStore
	Address AddressResolver
	Logger  *logger.Logger
	Clock   func() time.Time
}

// Service drives the simulated checkout.
type Service interface {
	Autofill(ctx context.Context, form *Form) *Form
	Submit(ctx context.Context, sessionID string, form *Form) (Confirmation, error)
	Complete(ctx context.Context, sessionID string) (cart.View, error)
}

// Confirmation is the simulated order receipt. No payment is taken.
type Confirmation struct {
	OrderNumber string `json:"order_number"`
	TotalItems  int    `json:"total_items"`
	TotalValue  string `json:"total_value"`
}

type service struct {
	cart    CartStore
	address AddressResolver
	logg    *logger.Logger
	clock   func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart service is required")
	}
	if params.Address == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address service is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		cart:    params.Cart,
		address: params.Address,
		logg:    logg,
		clock:   clock,
	}, nil
}

// Autofill runs the CEP blur: validate the CEP and, when well formed, fill the
// address fields from the lookup. Any lookup failure becomes a CEP field error.
func (s *service) Autofill(ctx context.Context, form *Form) *Form {
	if form == nil {
		form = NewForm()
	}
	form.Blur(FieldCEP)

	cep := form.Value(FieldCEP)
	if !formats.ValidateCEP(cep) {
		return form
	}

	addr, err := s.address.Resolve(ctx, cep)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"cep": cep, "error": err.Error()}), "checkout autofill lookup failed")
		form.Errors[FieldCEP] = msgCEPNotFound
		return form
	}
	form.ApplyAddress(addr)
	return form
}

// Submit validates the form against a non-empty cart and issues a confirmation.
func (s *service) Submit(ctx context.Context, sessionID string, form *Form) (Confirmation, error) {
	view, err := s.cart.Get(ctx, sessionID)
	if err != nil {
		return Confirmation{}, err
	}
	if len(view.Items) == 0 {
		return Confirmation{}, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	if form == nil {
		form = NewForm()
	}
	if err := form.Validate(); err != nil {
		details := map[string]string{}
		for field, msg := range FieldErrors(err) {
			details[string(field)] = msg
		}
		return Confirmation{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "checkout form is invalid").WithDetails(details)
	}

	confirmation := Confirmation{
		OrderNumber: s.orderNumber(),
		TotalItems:  view.Count,
		TotalValue:  view.Total,
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"session_id":   sessionID,
		"order_number": confirmation.OrderNumber,
		"total_items":  confirmation.TotalItems,
		"total_value":  confirmation.TotalValue,
	}), "checkout confirmed")
	return confirmation, nil
}

// Complete closes the confirmation and empties the cart.
func (s *service) Complete(ctx context.Context, sessionID string) (cart.View, error) {
	return s.cart.Clear(ctx, sessionID)
}

// orderNumber renders <unix millis>-<9 random chars>, upper-cased.
func (s *service) orderNumber() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:orderSuffixChars]
	return strings.ToUpper(fmt.Sprintf("%d-%s", s.clock().UnixMilli(), suffix))
}
