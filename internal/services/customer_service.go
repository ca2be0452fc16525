package services

import (
	"context"
	"strings"

	"stockbook/internal/domain"
	"stockbook/internal/repos"
	"stockbook/internal/validate"
)

type CustomerService struct {
	Customers *repos.CustomerRepo
	Audit     *AuditService
}

func NewCustomerService(customers *repos.CustomerRepo, audit *AuditService) *CustomerService {
	return &CustomerService{Customers: customers, Audit: audit}
}

type CustomerInput struct {
	Name      string `json:"name" validate:"required"`
	Address   string `json:"address"`
	ContactNo string `json:"contactNo"`
}

func (in CustomerInput) toCustomer() (domain.Customer, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Customer{}, err
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return domain.Customer{}, domain.Invalid("name", "customer name is required")
	}
	phone, ok := validate.Phone(in.ContactNo)
	if !ok {
		return domain.Customer{}, domain.Invalid("contactNo", "digits, spaces, +, - and () only")
	}
	return domain.Customer{Name: name, Address: strings.TrimSpace(in.Address), ContactNo: phone}, nil
}

func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	return s.Customers.List(ctx)
}

func (s *CustomerService) Create(ctx context.Context, actor domain.Actor, in CustomerInput) (domain.Customer, error) {
	c, err := in.toCustomer()
	if err != nil {
		return c, err
	}
	if err := s.Customers.Create(ctx, &c); err != nil {
		return domain.Customer{}, err
	}
	s.Audit.Record(ctx, actor, domain.AuditEntry{Action: "Added customer " + c.Name, Entity: "customer", EntityID: c.ID, EntityName: c.Name})
	return c, nil
}

// Update changes the customer record only. Deliveries keep the copy taken
// when they were saved.
func (s *CustomerService) Update(ctx context.Context, actor domain.Actor, id string, in CustomerInput) (domain.Customer, error) {
	c, err := in.toCustomer()
	if err != nil {
		return c, err
	}
	c.ID = id
	if err := s.Customers.Update(ctx, c); err != nil {
		return domain.Customer{}, err
	}
	s.Audit.Record(ctx, actor, domain.AuditEntry{Action: "Edited customer " + c.Name, Entity: "customer", EntityID: id, EntityName: c.Name})
	return s.Customers.Get(ctx, id)
}

func (s *CustomerService) Delete(ctx context.Context, actor domain.Actor, ids []string) (int, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, domain.Invalid("ids", "select at least one customer")
	}
	n, err := s.Customers.Delete(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.Audit.Record(ctx, actor, domain.AuditEntry{Action: "Deleted customers", Entity: "customer", Details: map[string]any{"ids": ids, "count": n}})
	return int(n), nil
}
