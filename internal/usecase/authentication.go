package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"studentpay/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Authentication logs departments in and out.
type Authentication struct {
	api    domain.Authenticator
	store  domain.CredentialStore
	verify Verifier
	logger *slog.Logger
}

// NewAuthentication creates a new Authentication usecase.
func NewAuthentication(api domain.Authenticator, s domain.CredentialStore, v Verifier, l *slog.Logger) *Authentication {
	if l == nil {
		l = slog.Default()
	}
	return &Authentication{api: api, store: s, verify: v, logger: l}
}

// Login obtains a token pair and stores it as the visitor's credential.
func (uc *Authentication) Login(ctx context.Context, email, password string) (domain.Credential, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.Credential{}, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	pair, err := uc.api.ObtainToken(ctx, email, password)
	if err != nil {
		return domain.Credential{}, err
	}

	departmentID := pair.DepartmentID
	if departmentID == "" {
		departmentID = departmentFromToken(pair.Access)
	}
	if departmentID == "" {
		return domain.Credential{}, domain.ErrMissingDepartment
	}

	cred := domain.Credential{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		DepartmentID: departmentID,
	}
	if err := uc.store.Save(ctx, cred); err != nil {
		return domain.Credential{}, err
	}
	uc.verify.Invalidate()

	uc.logger.InfoContext(ctx, "department logged in", "department_id", departmentID)
	return cred, nil
}

// Signup registers a department and logs it in.
func (uc *Authentication) Signup(ctx context.Context, form domain.SignupForm) (domain.Credential, error) {
	form.Email = strings.TrimSpace(form.Email)
	form.Name = strings.TrimSpace(form.Name)
	if form.Name == "" || form.Email == "" || form.Password == "" {
		return domain.Credential{}, fmt.Errorf("%w: name, email and password are required", domain.ErrInvalidInput)
	}
	if !strings.Contains(form.Email, "@") {
		return domain.Credential{}, fmt.Errorf("%w: email is not valid", domain.ErrInvalidInput)
	}

	if _, err := uc.api.RegisterDepartment(ctx, form); err != nil {
		return domain.Credential{}, err
	}
	uc.logger.InfoContext(ctx, "department registered", "email_domain", emailDomain(form.Email))

	return uc.Login(ctx, form.Email, form.Password)
}

// Logout forgets the credential and the cached verification status.
func (uc *Authentication) Logout(ctx context.Context) error {
	err := uc.store.ClearAll(ctx)
	uc.verify.Invalidate()
	if err != nil {
		return err
	}
	uc.logger.InfoContext(ctx, "department logged out")
	return nil
}

// departmentFromToken reads the department claim of an access token. The
// signature is not checked: the token is only ever sent back to the backend
// that issued it.
func departmentFromToken(access string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return ""
	}
	for _, name := range []string{"department_id", "department"} {
		switch v := claims[name].(type) {
		case string:
			return v
		case float64:
			return strconv.FormatInt(int64(v), 10)
		}
	}
	return ""
}

func emailDomain(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return email[i+1:]
	}
	return ""
}
