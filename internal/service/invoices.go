package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/invoice-dashboard/internal/model"
	"github.com/mmeshcher/invoice-dashboard/internal/repository"
	"github.com/mmeshcher/invoice-dashboard/internal/validation"
)

// Сообщения, возвращаемые форме.
const (
	MsgCreateMissingFields = "Missing Fields. Failed to Create Invoice."
	MsgCreateFailed        = "Database Error: Failed to Create Invoice."
	MsgUpdateFailed        = "Database Error: Failed to Update Invoice."
	MsgDeleteFailed        = "Database Error: Failed to Delete Invoice."
)

var errMalformedID = errors.New("malformed invoice id")

func parseInvoiceID(id string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", fmt.Errorf("%w: %q", errMalformedID, id)
	}
	return u.String(), nil
}

// CreateInvoice проверяет форму и сохраняет новый счёт с текущей датой.
// Предыдущее состояние формы не используется.
func (s *Service) CreateInvoice(ctx context.Context, _ State, form url.Values) Result {
	in, fe := validation.ParseInvoiceForm(form)
	if fe != nil {
		return failure(State{Errors: fe, Message: MsgCreateMissingFields})
	}

	amountInCents := in.AmountInCents()
	date := s.now().UTC().Format("2006-01-02")

	if err := s.repo.InsertInvoice(ctx, in.CustomerID, amountInCents, in.InvoiceStatus(), date); err != nil {
		s.logger.Error("create invoice error", zap.Error(err), zap.String("customerID", in.CustomerID))
		return failure(State{Message: MsgCreateFailed})
	}

	s.revalidator.RevalidatePath(ctx, InvoicesPath)
	return redirect(InvoicesPath)
}

// UpdateInvoice изменяет клиента, сумму и статус счёта. Невалидная форма
// возвращается ошибкой *validation.ValidationError, а не состоянием формы.
func (s *Service) UpdateInvoice(ctx context.Context, id string, form url.Values) (Result, error) {
	in, err := validation.MustParseInvoiceForm(form)
	if err != nil {
		return Result{}, err
	}

	amountInCents := in.AmountInCents()

	invoiceID, err := parseInvoiceID(id)
	if err == nil {
		err = s.repo.UpdateInvoice(ctx, invoiceID, in.CustomerID, amountInCents, in.InvoiceStatus())
	}
	if err != nil {
		s.logger.Error("update invoice error", zap.Error(err), zap.String("invoiceID", id))
		return failure(State{Message: MsgUpdateFailed}), nil
	}

	s.revalidator.RevalidatePath(ctx, InvoicesPath)
	return redirect(InvoicesPath), nil
}

// DeleteInvoice удаляет счёт. Удаление несуществующего счёта не является ошибкой.
func (s *Service) DeleteInvoice(ctx context.Context, id string) Result {
	invoiceID, err := parseInvoiceID(id)
	if err == nil {
		err = s.repo.DeleteInvoice(ctx, invoiceID)
	}
	if err != nil {
		s.logger.Error("delete invoice error", zap.Error(err), zap.String("invoiceID", id))
		return failure(State{Message: MsgDeleteFailed})
	}

	s.revalidator.RevalidatePath(ctx, InvoicesPath)
	return Result{Kind: ResultOK}
}

// GetInvoice возвращает счёт по идентификатору.
func (s *Service) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	invoiceID, err := parseInvoiceID(id)
	if err != nil {
		return nil, repository.ErrInvoiceNotFound
	}
	return s.repo.GetInvoice(ctx, invoiceID)
}

// ListInvoices возвращает страницу счетов по поисковой строке. Страницы нумеруются с 1.
func (s *Service) ListInvoices(ctx context.Context, query string, page int) (*model.InvoicePage, error) {
	if page < 1 {
		page = 1
	}
	query = strings.TrimSpace(query)

	total, err := s.repo.CountInvoices(ctx, query)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListInvoices(ctx, query, ItemsPerPage, (page-1)*ItemsPerPage)
	if err != nil {
		return nil, err
	}

	return &model.InvoicePage{
		Items:      items,
		Page:       page,
		TotalPages: int((total + ItemsPerPage - 1) / ItemsPerPage),
	}, nil
}

// ListCustomers возвращает список клиентов.
func (s *Service) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// Summary возвращает сводку для главной страницы панели.
func (s *Service) Summary(ctx context.Context) (*model.Summary, error) {
	return s.repo.Summary(ctx)
}
