package service

import (
	"context"
	"errors"
	"net/url"

	"github.com/mmeshcher/invoice-dashboard/internal/auth"
	"github.com/mmeshcher/invoice-dashboard/internal/model"
)

// ErrNoUser возвращается, если провайдер не вернул ни пользователя, ни ошибку.
var ErrNoUser = errors.New("credential provider returned no user")

// MarkerCredentialSignin значение, возвращаемое форме входа при неверных учётных данных.
const MarkerCredentialSignin = "CredentialSignin"

// AuthResult результат входа: либо маркер отказа, либо пользователь.
type AuthResult struct {
	Marker string
	User   *model.User
}

// Authenticate передаёт поля формы провайдеру учётных данных. Отказ по
// учётным данным превращается в маркер, остальные ошибки возвращаются как есть.
// При nil-ошибке и пустом маркере User всегда не nil.
func (s *Service) Authenticate(ctx context.Context, _ string, form url.Values) (AuthResult, error) {
	fields := make(map[string]string, len(form))
	for k := range form {
		fields[k] = form.Get(k)
	}

	u, err := s.provider.SignIn(ctx, auth.ProviderCredentials, fields)
	if err != nil {
		if auth.IsKind(err, auth.KindCredentialsSignin) {
			return AuthResult{Marker: MarkerCredentialSignin}, nil
		}
		return AuthResult{}, err
	}
	if u == nil {
		return AuthResult{}, ErrNoUser
	}

	return AuthResult{User: u}, nil
}
