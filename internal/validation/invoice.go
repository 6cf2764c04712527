package validation

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/invoice-dashboard/internal/model"
)

// Имена полей формы счёта.
const (
	FieldCustomerID = "customerId"
	FieldAmount     = "amount"
	FieldStatus     = "status"
)

var invoiceMessages = map[string]string{
	FieldCustomerID: "Please select a customer.",
	FieldAmount:     "Please enter an amount greater than $0.",
	FieldStatus:     "Please select an invoice status.",
}

// InvoiceInput результат разбора формы создания или изменения счёта.
type InvoiceInput struct {
	CustomerID string          `form:"customerId" validate:"required"`
	Amount     decimal.Decimal `form:"amount" validate:"gt=0"`
	Status     string          `form:"status" validate:"required,oneof=pending paid"`
}

// AmountInCents возвращает сумму в центах, round(amount*100).
func (in InvoiceInput) AmountInCents() int64 {
	return toCents(in.Amount)
}

// InvoiceStatus возвращает статус счёта как доменный тип.
func (in InvoiceInput) InvoiceStatus() model.InvoiceStatus {
	return model.InvoiceStatus(in.Status)
}

// ParseInvoiceForm разбирает форму счёта. Ошибки не прерывают разбор,
// а попадают в FieldErrors; решение об отказе принимает вызывающий код.
func ParseInvoiceForm(values url.Values) (InvoiceInput, FieldErrors) {
	in := InvoiceInput{
		CustomerID: strings.TrimSpace(values.Get(FieldCustomerID)),
		Amount:     coerceAmount(values.Get(FieldAmount)),
		Status:     strings.TrimSpace(values.Get(FieldStatus)),
	}

	fe, err := check(in, invoiceMessages)
	if err != nil {
		// Сбой самого валидатора считаем ошибкой всех полей.
		fe = FieldErrors{}
		for field, msg := range invoiceMessages {
			fe.add(field, msg)
		}
	}
	if len(fe) == 0 {
		return in, nil
	}
	return in, fe
}

// MustParseInvoiceForm строгий вариант ParseInvoiceForm: при любой ошибке
// возвращает *ValidationError.
func MustParseInvoiceForm(values url.Values) (InvoiceInput, error) {
	in, fe := ParseInvoiceForm(values)
	if fe != nil {
		return InvoiceInput{}, &ValidationError{Fields: fe}
	}
	return in, nil
}

// coerceAmount приводит строку к числу. Пустое, нечисловое значение и сумма,
// не помещающаяся в int64 центов, дают 0.
func coerceAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	if !d.Shift(2).Round(0).BigInt().IsInt64() {
		return decimal.Zero
	}
	return d
}

