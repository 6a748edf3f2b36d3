package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/migarbe/SisConVen-sub000/internal/commission"
)

var (
	// ErrClientNotFound indicates an unknown client id.
	ErrClientNotFound = errors.New("directory: client not found")
	// ErrSellerNotFound indicates an unknown seller id.
	ErrSellerNotFound = errors.New("directory: seller not found")
	// ErrDuplicateName indicates a name collision on create or update.
	ErrDuplicateName = errors.New("directory: name already in use")
	// ErrInvalidInput indicates a malformed create/update request.
	ErrInvalidInput = errors.New("directory: invalid input")
	// ErrSellerHasPending indicates a delete attempt on a seller with
	// unpaid commission.
	ErrSellerHasPending = errors.New("directory: seller has pending commission")
)

// RepositoryPort defines data access for clients and sellers.
type RepositoryPort interface {
	GetClient(ctx context.Context, id int64) (Client, error)
	ListClients(ctx context.Context) ([]Client, error)
	CreateClient(ctx context.Context, c Client) (Client, error)
	UpdateClient(ctx context.Context, c Client) (Client, error)
	DeleteClient(ctx context.Context, id int64) error

	GetSeller(ctx context.Context, id int64) (Seller, error)
	ListSellers(ctx context.Context) ([]Seller, error)
	CreateSeller(ctx context.Context, s Seller) (Seller, error)
	UpdateSeller(ctx context.Context, s Seller) (Seller, error)
	DeleteSeller(ctx context.Context, id int64) error
}

// CommissionPort reports a seller's unpaid commission. Satisfied by the
// commission service.
type CommissionPort interface {
	Pending(ctx context.Context, sellerID int64) (decimal.Decimal, error)
}

// Service manages the client and seller directories.
type Service struct {
	repo        RepositoryPort
	commissions CommissionPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, commissions CommissionPort) *Service {
	return &Service{repo: repo, commissions: commissions}
}

func validateClient(in ClientInput) (ClientInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return in, nil
}

func validateSeller(in SellerInput) (SellerInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	switch in.CommissionType {
	case commission.TypePercent, commission.TypeFixed:
	default:
		return in, fmt.Errorf("%w: unknown commission type %q", ErrInvalidInput, in.CommissionType)
	}
	if in.CommissionValue.IsNegative() {
		return in, fmt.Errorf("%w: commission value cannot be negative", ErrInvalidInput)
	}
	return in, nil
}

func (s *Service) GetClient(ctx context.Context, id int64) (Client, error) {
	return s.repo.GetClient(ctx, id)
}

func (s *Service) ListClients(ctx context.Context) ([]Client, error) {
	return s.repo.ListClients(ctx)
}

func (s *Service) CreateClient(ctx context.Context, in ClientInput) (Client, error) {
	in, err := validateClient(in)
	if err != nil {
		return Client{}, err
	}
	return s.repo.CreateClient(ctx, Client{Name: in.Name, Phone: in.Phone, Email: in.Email})
}

func (s *Service) UpdateClient(ctx context.Context, id int64, in ClientInput) (Client, error) {
	in, err := validateClient(in)
	if err != nil {
		return Client{}, err
	}
	c, err := s.repo.GetClient(ctx, id)
	if err != nil {
		return Client{}, err
	}
	c.Name = in.Name
	c.Phone = in.Phone
	c.Email = in.Email
	return s.repo.UpdateClient(ctx, c)
}

func (s *Service) DeleteClient(ctx context.Context, id int64) error {
	return s.repo.DeleteClient(ctx, id)
}

// ContactEmail returns a client's email address, empty when none is set.
func (s *Service) ContactEmail(ctx context.Context, clientID int64) (string, error) {
	c, err := s.repo.GetClient(ctx, clientID)
	if err != nil {
		return "", err
	}
	return c.Email, nil
}

func (s *Service) GetSeller(ctx context.Context, id int64) (Seller, error) {
	return s.repo.GetSeller(ctx, id)
}

func (s *Service) ListSellers(ctx context.Context) ([]Seller, error) {
	return s.repo.ListSellers(ctx)
}

func (s *Service) CreateSeller(ctx context.Context, in SellerInput) (Seller, error) {
	in, err := validateSeller(in)
	if err != nil {
		return Seller{}, err
	}
	return s.repo.CreateSeller(ctx, Seller{
		Name:            in.Name,
		Phone:           in.Phone,
		CommissionType:  in.CommissionType,
		CommissionValue: in.CommissionValue,
	})
}

func (s *Service) UpdateSeller(ctx context.Context, id int64, in SellerInput) (Seller, error) {
	in, err := validateSeller(in)
	if err != nil {
		return Seller{}, err
	}
	sl, err := s.repo.GetSeller(ctx, id)
	if err != nil {
		return Seller{}, err
	}
	sl.Name = in.Name
	sl.Phone = in.Phone
	sl.CommissionType = in.CommissionType
	sl.CommissionValue = in.CommissionValue
	return s.repo.UpdateSeller(ctx, sl)
}

// DeleteSeller removes a seller. Sellers still owed commission are refused
// so the payable is never orphaned.
func (s *Service) DeleteSeller(ctx context.Context, id int64) error {
	if _, err := s.repo.GetSeller(ctx, id); err != nil {
		return err
	}
	pending, err := s.commissions.Pending(ctx, id)
	if err != nil {
		return err
	}
	if pending.IsPositive() {
		return ErrSellerHasPending
	}
	return s.repo.DeleteSeller(ctx, id)
}
