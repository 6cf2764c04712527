package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/invoice-dashboard/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware панели счетов.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Get("/", h.Summary)
		r.Get("/customers", h.ListCustomers)

		r.Route("/invoices", func(r chi.Router) {
			r.With(h.cache.Middleware).Get("/", h.ListInvoices)
			r.Post("/", h.CreateInvoice)

			r.Route("/{id}", func(r chi.Router) {
				r.With(h.cache.Middleware).Get("/", h.GetInvoice)
				r.Put("/", h.UpdateInvoice)
				r.Post("/", h.UpdateInvoice)
				r.Delete("/", h.DeleteInvoice)
				r.Post("/delete", h.DeleteInvoice)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
