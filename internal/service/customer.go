package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mikronet/billd/internal/repository"
)

// CustomerService manages customer records, plans, and provisioned
// services for the back office.
type CustomerService struct {
	repo   repository.Querier
	logger *slog.Logger
}

// NewCustomerService creates a new CustomerService instance.
func NewCustomerService(repo repository.Querier, logger *slog.Logger) *CustomerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomerService{repo: repo, logger: logger}
}

// CreateCustomerParams contains the fields for a new customer record.
type CreateCustomerParams struct {
	FullName string
	Email    string
	Phone    string
	Address  string
}

func (s *CustomerService) CreateCustomer(ctx context.Context, params CreateCustomerParams) (*repository.Customer, error) {
	customer, err := s.repo.CreateCustomer(ctx, repository.CreateCustomerParams{
		FullName: params.FullName,
		Email:    params.Email,
		Phone:    params.Phone,
		Address:  textOf(params.Address),
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, customerID string) (*repository.Customer, error) {
	id, err := parseUUID(customerID)
	if err != nil {
		return nil, err
	}
	customer, err := s.repo.GetCustomerByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (s *CustomerService) ListCustomers(ctx context.Context, limit, offset int32) ([]repository.Customer, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListCustomers(ctx, repository.ListCustomersParams{Limit: limit, Offset: offset})
}

// UpdateCustomerParams contains the fields for a customer update.
type UpdateCustomerParams struct {
	CustomerID string
	FullName   string
	Email      string
	Phone      string
	Address    string
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, params UpdateCustomerParams) (*repository.Customer, error) {
	id, err := parseUUID(params.CustomerID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetCustomerByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	err = s.repo.UpdateCustomer(ctx, repository.UpdateCustomerParams{
		ID:       id,
		FullName: params.FullName,
		Email:    params.Email,
		Phone:    params.Phone,
		Address:  textOf(params.Address),
	})
	if err != nil {
		return nil, err
	}

	customer, err := s.repo.GetCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreatePlanParams contains the fields for a new plan.
type CreatePlanParams struct {
	Name              string
	DownloadKbps      int32
	UploadKbps        int32
	MonthlyPriceCents int64
}

func (s *CustomerService) CreatePlan(ctx context.Context, params CreatePlanParams) (*repository.Plan, error) {
	if params.MonthlyPriceCents <= 0 {
		return nil, ErrInvalidAmount
	}
	plan, err := s.repo.CreatePlan(ctx, repository.CreatePlanParams{
		Name:              params.Name,
		DownloadKbps:      params.DownloadKbps,
		UploadKbps:        params.UploadKbps,
		MonthlyPriceCents: params.MonthlyPriceCents,
	})
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (s *CustomerService) GetPlan(ctx context.Context, planID string) (*repository.Plan, error) {
	id, err := parseUUID(planID)
	if err != nil {
		return nil, err
	}
	plan, err := s.repo.GetPlanByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (s *CustomerService) ListPlans(ctx context.Context) ([]repository.Plan, error) {
	return s.repo.ListPlans(ctx)
}

// CreateServiceParams contains the fields for provisioning a subscriber
// service.
type CreateServiceParams struct {
	CustomerID    string
	PlanID        string
	Username      string
	RouterAddress string
}

// CreateService provisions a service for a customer on a plan. The service
// starts active; PPPoE credentials are assumed to exist on the router.
func (s *CustomerService) CreateService(ctx context.Context, params CreateServiceParams) (*repository.Service, error) {
	customerID, err := parseUUID(params.CustomerID)
	if err != nil {
		return nil, err
	}
	planID, err := parseUUID(params.PlanID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetCustomerByID(ctx, customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	if _, err := s.repo.GetPlanByID(ctx, planID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	svc, err := s.repo.CreateService(ctx, repository.CreateServiceParams{
		CustomerID:    customerID,
		PlanID:        planID,
		Username:      params.Username,
		RouterAddress: params.RouterAddress,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("service provisioned",
		"service_id", uuidString(svc.ID),
		"customer_id", params.CustomerID,
		"username", params.Username)

	return &svc, nil
}

func (s *CustomerService) GetService(ctx context.Context, serviceID string) (*repository.Service, error) {
	id, err := parseUUID(serviceID)
	if err != nil {
		return nil, err
	}
	svc, err := s.repo.GetServiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &svc, nil
}

func (s *CustomerService) ListServices(ctx context.Context, limit, offset int32) ([]repository.Service, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListServices(ctx, repository.ListServicesParams{Limit: limit, Offset: offset})
}

func textOf(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
