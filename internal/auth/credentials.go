// Package auth реализует проверку учётных данных пользователей панели.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/invoice-dashboard/internal/model"
	"github.com/mmeshcher/invoice-dashboard/internal/repository"
	"github.com/mmeshcher/invoice-dashboard/internal/validation"
)

// ProviderCredentials тип провайдера входа по email и паролю.
const ProviderCredentials = "credentials"

var errInvalidPassword = errors.New("invalid password")

// UserFinder ищет пользователя по адресу электронной почты.
type UserFinder interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// CredentialsProvider проверяет email и пароль по таблице пользователей.
type CredentialsProvider struct {
	users UserFinder
}

// NewCredentialsProvider создаёт провайдер поверх хранилища пользователей.
func NewCredentialsProvider(users UserFinder) *CredentialsProvider {
	return &CredentialsProvider{users: users}
}

// SignIn проверяет учётные данные и возвращает пользователя.
func (p *CredentialsProvider) SignIn(ctx context.Context, provider string, fields map[string]string) (*model.User, error) {
	if provider != ProviderCredentials {
		return nil, &Error{Kind: KindUnsupportedProvider, Err: fmt.Errorf("provider %q", provider)}
	}

	creds, fe := validation.ParseCredentialsForm(fields)
	if fe != nil {
		return nil, &Error{Kind: KindCredentialsSignin, Err: &validation.ValidationError{Fields: fe}}
	}

	u, err := p.users.GetUserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, &Error{Kind: KindCredentialsSignin, Err: err}
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(creds.Password)); err != nil {
		return nil, &Error{Kind: KindCredentialsSignin, Err: errInvalidPassword}
	}

	return u, nil
}

// HashPassword возвращает bcrypt-хеш пароля.
func HashPassword(password string, cost int) ([]byte, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword([]byte(password), cost)
}

// IsKind сообщает, является ли err ошибкой провайдера указанного вида.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
