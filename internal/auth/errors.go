package auth

import "fmt"

// Kind классифицирует отказ при входе.
type Kind int

const (
	// KindCredentialsSignin учётные данные не подошли.
	KindCredentialsSignin Kind = iota + 1
	// KindUnsupportedProvider запрошен неизвестный тип провайдера.
	KindUnsupportedProvider
)

func (k Kind) String() string {
	switch k {
	case KindCredentialsSignin:
		return "CredentialsSignin"
	case KindUnsupportedProvider:
		return "UnsupportedProvider"
	default:
		return "Unknown"
	}
}

// Error ошибка провайдера учётных данных с типизированным видом отказа.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}
