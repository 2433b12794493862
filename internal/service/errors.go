package service

import (
	"github.com/mikronet/billd/internal/domain"
)

// Customer/plan errors - use domain.ENOTFOUND
var (
	ErrCustomerNotFound = domain.Errorf(domain.ENOTFOUND, "", "Customer not found")
	ErrPlanNotFound     = domain.Errorf(domain.ENOTFOUND, "", "Plan not found")
	ErrTicketNotFound   = domain.Errorf(domain.ENOTFOUND, "", "Ticket not found")
)

// Validation errors - use domain.EINVALID
var (
	ErrInvalidID           = domain.Errorf(domain.EINVALID, "", "Invalid identifier")
	ErrInvalidAmount       = domain.Errorf(domain.EINVALID, "", "Amount must be greater than 0")
	ErrInvalidTicketStatus = domain.Errorf(domain.EINVALID, "", "Invalid ticket status")
)

// Invoice and payment errors re-exported from domain
var (
	ErrInvoiceNotFound       = domain.ErrInvoiceNotFound
	ErrInvoiceAlreadyPaid    = domain.ErrInvoiceAlreadyPaid
	ErrPaymentNotFound       = domain.ErrPaymentNotFound
	ErrPaymentNotPending     = domain.ErrPaymentNotPending
	ErrPaymentExceedsBalance = domain.ErrPaymentExceedsBalance
)

// Service lifecycle errors re-exported from domain
var (
	ErrServiceNotFound     = domain.ErrServiceNotFound
	ErrServiceNotSuspended = domain.ErrServiceNotSuspended
	ErrServiceTerminated   = domain.ErrServiceTerminated
)
