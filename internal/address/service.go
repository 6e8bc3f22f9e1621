package address

import (
	"context"

	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
	"github.com/angelmondragon/cinecart/pkg/logger"
	"github.com/angelmondragon/cinecart/pkg/types"
)

// Lookup resolves a postal code into an address.
type Lookup interface {
	Lookup(ctx context.Context, cep string) (*types.Address, error)
}

type Service interface {
	Resolve(ctx context.Context, cep string) (types.Address, error)
}

type service struct {
	lookup Lookup
	logg   *logger.Logger
}

func NewService(lookup Lookup, logg *logger.Logger) Service {
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{lookup: lookup, logg: logg}
}

func (s *service) Resolve(ctx context.Context, cep string) (types.Address, error) {
	if s == nil || s.lookup == nil {
		return types.Address{}, pkgerrors.New(pkgerrors.CodeDependency, "postal code lookup unavailable")
	}

	addr, err := s.lookup.Lookup(ctx, cep)
	if err != nil {
		ctx = s.logg.WithField(ctx, "cep", cep)
		if pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
			s.logg.Error(ctx, "postal code lookup failed", err)
		} else {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "postal code lookup rejected")
		}
		return types.Address{}, err
	}
	if addr == nil {
		return types.Address{}, pkgerrors.New(pkgerrors.CodeDependency, "postal code lookup returned no address")
	}
	return *addr, nil
}
