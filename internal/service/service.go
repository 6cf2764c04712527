// Package service реализует операции изменения счетов и вход в панель.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/invoice-dashboard/internal/model"
	"github.com/mmeshcher/invoice-dashboard/internal/revalidate"
)

// InvoicesPath путь списка счетов: его инвалидируют и на него перенаправляют после изменений.
const InvoicesPath = "/dashboard/invoices"

// ItemsPerPage размер страницы списка счетов.
const ItemsPerPage = 6

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	InsertInvoice(ctx context.Context, customerID string, amountCents int64, status model.InvoiceStatus, date string) error
	UpdateInvoice(ctx context.Context, id, customerID string, amountCents int64, status model.InvoiceStatus) error
	DeleteInvoice(ctx context.Context, id string) error
	GetInvoice(ctx context.Context, id string) (*model.Invoice, error)
	ListInvoices(ctx context.Context, query string, limit, offset int) ([]model.InvoiceView, error)
	CountInvoices(ctx context.Context, query string) (int64, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	Summary(ctx context.Context) (*model.Summary, error)
}

// CredentialProvider проверяет учётные данные указанного типа.
type CredentialProvider interface {
	SignIn(ctx context.Context, provider string, fields map[string]string) (*model.User, error)
}

// Service содержит бизнес-логику панели счетов.
type Service struct {
	repo        Repository
	provider    CredentialProvider
	revalidator revalidate.Revalidator
	logger      *zap.Logger
	now         func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger задаёт логгер сервиса.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService создаёт сервис поверх хранилища, провайдера учётных данных и сигнала инвалидации.
func NewService(repo Repository, provider CredentialProvider, revalidator revalidate.Revalidator, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		provider:    provider,
		revalidator: revalidator,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.revalidator == nil {
		s.revalidator = revalidate.Chain{}
	}
	return s
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}
