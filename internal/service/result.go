package service

import "github.com/mmeshcher/invoice-dashboard/internal/validation"

// State состояние формы после неудачной операции.
type State struct {
	Errors  validation.FieldErrors `json:"errors,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// ResultKind вариант результата операции изменения.
type ResultKind int

const (
	// ResultOK операция выполнена, переход не требуется.
	ResultOK ResultKind = iota
	// ResultRedirect операция выполнена, клиента нужно перенаправить.
	ResultRedirect
	// ResultFailure операция не выполнена, State описывает причину.
	ResultFailure
)

// Result результат операции изменения счёта.
type Result struct {
	Kind       ResultKind
	RedirectTo string
	State      State
}

func redirect(path string) Result {
	return Result{Kind: ResultRedirect, RedirectTo: path}
}

func failure(state State) Result {
	return Result{Kind: ResultFailure, State: state}
}

// Failed сообщает, что операция не выполнена.
func (r Result) Failed() bool {
	return r.Kind == ResultFailure
}
