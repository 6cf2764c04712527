// Package handler содержит HTTP-обработчики панели счетов.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/invoice-dashboard/internal/middleware"
	"github.com/mmeshcher/invoice-dashboard/internal/model"
	"github.com/mmeshcher/invoice-dashboard/internal/repository"
	"github.com/mmeshcher/invoice-dashboard/internal/revalidate"
	"github.com/mmeshcher/invoice-dashboard/internal/service"
	"github.com/mmeshcher/invoice-dashboard/internal/validation"
)

// DashboardPath страница, на которую попадает пользователь после входа.
const DashboardPath = "/dashboard"

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	CreateInvoice(ctx context.Context, prev service.State, form url.Values) service.Result
	UpdateInvoice(ctx context.Context, id string, form url.Values) (service.Result, error)
	DeleteInvoice(ctx context.Context, id string) service.Result
	Authenticate(ctx context.Context, prev string, form url.Values) (service.AuthResult, error)
	GetInvoice(ctx context.Context, id string) (*model.Invoice, error)
	ListInvoices(ctx context.Context, query string, page int) (*model.InvoicePage, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	Summary(ctx context.Context) (*model.Summary, error)
}

// Handler реализует HTTP-обработчики панели счетов.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	cache          *revalidate.PathCache
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, cache *revalidate.PathCache) *Handler {
	if cache == nil {
		cache = revalidate.NewPathCache()
	}
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		cache:          cache,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeResult переводит результат операции изменения в HTTP-ответ.
func writeResult(w http.ResponseWriter, r *http.Request, res service.Result, failStatus int) {
	switch res.Kind {
	case service.ResultRedirect:
		http.Redirect(w, r, res.RedirectTo, http.StatusSeeOther)
	case service.ResultFailure:
		writeJSON(w, failStatus, res.State)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// Login выполняет вход по форме и устанавливает cookie сессии.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	res, err := h.service.Authenticate(r.Context(), "", r.PostForm)
	if err != nil {
		h.logger.Error("authenticate error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if res.Marker != "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": res.Marker})
		return
	}
	if res.User == nil {
		h.logger.Error("authenticate returned no user")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.authMiddleware.SetAuthCookie(w, res.User.ID); err != nil {
		h.logger.Error("issue session error", zap.Error(err), zap.String("userID", res.User.ID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
}

// Logout завершает сессию.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authMiddleware.ClearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// CreateInvoice создаёт счёт из формы.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	res := h.service.CreateInvoice(r.Context(), service.State{}, r.PostForm)

	status := http.StatusInternalServerError
	if res.State.Errors != nil {
		status = http.StatusUnprocessableEntity
	}
	writeResult(w, r, res, status)
}

// UpdateInvoice изменяет счёт из формы.
func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")

	res, err := h.service.UpdateInvoice(r.Context(), id, r.PostForm)
	if err != nil {
		if ve, ok := validation.AsValidationError(err); ok {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": ve.Error(), "errors": ve.Fields})
			return
		}
		h.logger.Error("update invoice error", zap.Error(err), zap.String("invoiceID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeResult(w, r, res, http.StatusInternalServerError)
}

// DeleteInvoice удаляет счёт.
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	res := h.service.DeleteInvoice(r.Context(), chi.URLParam(r, "id"))
	writeResult(w, r, res, http.StatusInternalServerError)
}

// GetInvoice возвращает счёт по идентификатору.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	inv, err := h.service.GetInvoice(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("get invoice error", zap.Error(err), zap.String("invoiceID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, inv)
}

// ListInvoices возвращает страницу счетов. Параметры: query и page.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		page = p
	}

	res, err := h.service.ListInvoices(r.Context(), r.URL.Query().Get("query"), page)
	if err != nil {
		h.logger.Error("list invoices error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// ListCustomers возвращает список клиентов.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		h.logger.Error("list customers error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if customers == nil {
		customers = []model.Customer{}
	}

	writeJSON(w, http.StatusOK, customers)
}

// Summary возвращает сводку панели.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("summary error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, s)
}
