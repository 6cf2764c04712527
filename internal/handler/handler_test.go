package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/invoice-dashboard/internal/middleware"
	"github.com/mmeshcher/invoice-dashboard/internal/model"
	"github.com/mmeshcher/invoice-dashboard/internal/repository"
	"github.com/mmeshcher/invoice-dashboard/internal/revalidate"
	"github.com/mmeshcher/invoice-dashboard/internal/service"
	"github.com/mmeshcher/invoice-dashboard/internal/validation"
)

const invoiceID = "3958dc9e-712f-4377-85e9-fec4b6a6442a"

type stubService struct {
	createRes  service.Result
	createForm url.Values

	updateRes service.Result
	updateErr error
	updateID  string

	deleteRes service.Result
	deleteID  string

	authRes service.AuthResult
	authErr error

	invoice    *model.Invoice
	invoiceErr error

	page      *model.InvoicePage
	pageErr   error
	pageCalls int
	pageQuery string
	pageNum   int
}

func (s *stubService) CreateInvoice(ctx context.Context, prev service.State, form url.Values) service.Result {
	s.createForm = form
	return s.createRes
}

func (s *stubService) UpdateInvoice(ctx context.Context, id string, form url.Values) (service.Result, error) {
	s.updateID = id
	return s.updateRes, s.updateErr
}

func (s *stubService) DeleteInvoice(ctx context.Context, id string) service.Result {
	s.deleteID = id
	return s.deleteRes
}

func (s *stubService) Authenticate(ctx context.Context, prev string, form url.Values) (service.AuthResult, error) {
	return s.authRes, s.authErr
}

func (s *stubService) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	return s.invoice, s.invoiceErr
}

func (s *stubService) ListInvoices(ctx context.Context, query string, page int) (*model.InvoicePage, error) {
	s.pageCalls++
	s.pageQuery = query
	s.pageNum = page
	return s.page, s.pageErr
}

func (s *stubService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return nil, nil
}

func (s *stubService) Summary(ctx context.Context) (*model.Summary, error) {
	return &model.Summary{Invoices: 3}, nil
}

type testEnv struct {
	handler *Handler
	router  http.Handler
	cookie  *http.Cookie
	cache   *revalidate.PathCache
}

func newTestEnv(t *testing.T, svc Service) *testEnv {
	t.Helper()

	auth, err := middleware.NewAuthMiddleware("test-secret", time.Hour)
	require.NoError(t, err)
	cache := revalidate.NewPathCache()
	h := NewHandler(svc, zap.NewNop(), auth, cache)

	rec := httptest.NewRecorder()
	require.NoError(t, auth.SetAuthCookie(rec, "u1"))

	return &testEnv{
		handler: h,
		router:  h.SetupRouter(),
		cookie:  rec.Result().Cookies()[0],
		cache:   cache,
	}
}

func (e *testEnv) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.AddCookie(e.cookie)

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func invoiceForm() url.Values {
	return url.Values{"customerId": {"c1"}, "amount": {"34.5"}, "status": {"paid"}}
}

func TestCreateInvoice_Redirects(t *testing.T) {
	svc := &stubService{
		createRes: service.Result{Kind: service.ResultRedirect, RedirectTo: service.InvoicesPath},
	}
	env := newTestEnv(t, svc)

	rec := env.do(http.MethodPost, "/dashboard/invoices", invoiceForm())

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, service.InvoicesPath, rec.Header().Get("Location"))
	assert.Equal(t, "34.5", svc.createForm.Get("amount"))
}

func TestCreateInvoice_ValidationErrors(t *testing.T) {
	svc := &stubService{
		createRes: service.Result{
			Kind: service.ResultFailure,
			State: service.State{
				Errors:  validation.FieldErrors{"customerId": {"Please select a customer."}},
				Message: service.MsgCreateMissingFields,
			},
		},
	}
	env := newTestEnv(t, svc)

	rec := env.do(http.MethodPost, "/dashboard/invoices", url.Values{"amount": {"10"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var state service.State
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&state))
	assert.Equal(t, service.MsgCreateMissingFields, state.Message)
	assert.Equal(t, []string{"Please select a customer."}, state.Errors["customerId"])
}

func TestCreateInvoice_StoreFailure(t *testing.T) {
	svc := &stubService{
		createRes: service.Result{Kind: service.ResultFailure, State: service.State{Message: service.MsgCreateFailed}},
	}
	env := newTestEnv(t, svc)

	rec := env.do(http.MethodPost, "/dashboard/invoices", invoiceForm())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), service.MsgCreateFailed)
}

func TestUpdateInvoice_PutAndPost(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			svc := &stubService{
				updateRes: service.Result{Kind: service.ResultRedirect, RedirectTo: service.InvoicesPath},
			}
			env := newTestEnv(t, svc)

			rec := env.do(method, "/dashboard/invoices/"+invoiceID, invoiceForm())
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, invoiceID, svc.updateID)
		})
	}
}

func TestUpdateInvoice_ValidationErrorIsBadRequest(t *testing.T) {
	svc := &stubService{
		updateErr: &validation.ValidationError{Fields: validation.FieldErrors{"status": {"Please select an invoice status."}}},
	}
	env := newTestEnv(t, svc)

	rec := env.do(http.MethodPut, "/dashboard/invoices/"+invoiceID, invoiceForm())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "status")
}

func TestUpdateInvoice_StoreFailure(t *testing.T) {
	svc := &stubService{
		updateRes: service.Result{Kind: service.ResultFailure, State: service.State{Message: service.MsgUpdateFailed}},
	}
	env := newTestEnv(t, svc)

	rec := env.do(http.MethodPut, "/dashboard/invoices/"+invoiceID, invoiceForm())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestDeleteInvoice(t *testing.T) {
	svc := &stubService{deleteRes: service.Result{Kind: service.ResultOK}}
	env := newTestEnv(t, svc)

	rec := env.do(http.MethodDelete, "/dashboard/invoices/"+invoiceID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, invoiceID, svc.deleteID)

	rec = env.do(http.MethodPost, "/dashboard/invoices/"+invoiceID+"/delete", url.Values{})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetInvoice_NotFound(t *testing.T) {
	svc := &stubService{invoiceErr: repository.ErrInvoiceNotFound}
	env := newTestEnv(t, svc)

	rec := env.do(http.MethodGet, "/dashboard/invoices/"+invoiceID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListInvoices_CachedUntilRevalidated(t *testing.T) {
	svc := &stubService{page: &model.InvoicePage{Page: 2, TotalPages: 3}}
	env := newTestEnv(t, svc)

	first := env.do(http.MethodGet, "/dashboard/invoices?query=acme&page=2", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "acme", svc.pageQuery)
	assert.Equal(t, 2, svc.pageNum)

	env.do(http.MethodGet, "/dashboard/invoices?query=acme&page=2", nil)
	assert.Equal(t, 1, svc.pageCalls)

	env.cache.RevalidatePath(context.Background(), service.InvoicesPath)

	env.do(http.MethodGet, "/dashboard/invoices?query=acme&page=2", nil)
	assert.Equal(t, 2, svc.pageCalls)
}

func TestListInvoices_BadPage(t *testing.T) {
	env := newTestEnv(t, &stubService{})

	rec := env.do(http.MethodGet, "/dashboard/invoices?page=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboard_RequiresSession(t *testing.T) {
	env := newTestEnv(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/dashboard", nil).Code)
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		svc        *stubService
		wantStatus int
		wantCookie bool
		wantBody   string
	}{
		{
			name:       "success",
			svc:        &stubService{authRes: service.AuthResult{User: &model.User{ID: "u1"}}},
			wantStatus: http.StatusSeeOther,
			wantCookie: true,
		},
		{
			name:       "credential signin",
			svc:        &stubService{authRes: service.AuthResult{Marker: service.MarkerCredentialSignin}},
			wantStatus: http.StatusUnauthorized,
			wantBody:   service.MarkerCredentialSignin,
		},
		{
			name:       "provider failure",
			svc:        &stubService{authErr: errors.New("database is down")},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "empty result without user",
			svc:        &stubService{},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.svc)

			form := url.Values{"email": {"user@nextmail.com"}, "password": {"123456"}}
			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCookie, len(rec.Result().Cookies()) > 0)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
			if tt.wantCookie {
				assert.Equal(t, DashboardPath, rec.Header().Get("Location"))
			}
		})
	}
}
