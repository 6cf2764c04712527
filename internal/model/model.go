// Package model содержит доменные сущности сервиса счетов.
package model

// User представляет пользователя панели управления.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
}

// InvoiceStatus описывает статус оплаты счёта.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Invoice описывает сохранённый счёт. Сумма хранится в центах.
type Invoice struct {
	ID         string        `json:"id"`
	CustomerID string        `json:"customerId"`
	Amount     int64         `json:"amount"`
	Status     InvoiceStatus `json:"status"`
	Date       string        `json:"date"`
}

// Customer описывает клиента, которому выставляются счета.
type Customer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
}

// InvoiceView строка списка счетов вместе с данными клиента.
type InvoiceView struct {
	ID       string        `json:"id"`
	Amount   int64         `json:"amount"`
	Date     string        `json:"date"`
	Status   InvoiceStatus `json:"status"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	ImageURL string        `json:"imageUrl"`
}

// InvoicePage страница результатов поиска счетов.
type InvoicePage struct {
	Items      []InvoiceView `json:"items"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
}

// Summary содержит сводные показатели для главной страницы панели.
type Summary struct {
	Invoices     int64 `json:"invoices"`
	Customers    int64 `json:"customers"`
	PaidTotal    int64 `json:"paidTotal"`
	PendingTotal int64 `json:"pendingTotal"`
}
