package identity

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medibook/medibook/internal/platform/auth"
	"github.com/medibook/medibook/internal/platform/db"
	"github.com/medibook/medibook/internal/platform/httperr"
)

// MinPasswordLength is the minimum accepted password length at registration.
const MinPasswordLength = 8

// ProviderBootstrapper creates the placeholder provider profile for a newly
// registered doctor account.
type ProviderBootstrapper interface {
	CreateDefaultProfile(ctx context.Context, accountID uuid.UUID, name string) error
}

type Service struct {
	accounts  Repository
	providers ProviderBootstrapper
	tokens    *auth.TokenIssuer
	inTx      db.Atomic
}

// NewService wires the account store, the provider bootstrapper, and the
// token issuer. inTx makes registration atomic: a doctor's account row and
// placeholder profile commit together.
func NewService(accounts Repository, providers ProviderBootstrapper, tokens *auth.TokenIssuer, inTx db.Atomic) *Service {
	return &Service{accounts: accounts, providers: providers, tokens: tokens, inTx: inTx}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// Register creates an account and, for doctors, a placeholder provider
// profile awaiting admin approval. Returns the account and a signed token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Account, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Role == "" {
		in.Role = RolePatient
	}

	if in.Name == "" {
		return nil, "", httperr.Validationf("name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, "", httperr.Validationf("a valid email is required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, "", httperr.Validationf("password must be at least %d characters", MinPasswordLength)
	}
	if !RegistrableRole(in.Role) {
		return nil, "", httperr.Validationf("role must be %s or %s", RolePatient, RoleDoctor)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	account := &Account{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Phone:        in.Phone,
		Role:         in.Role,
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.accounts.Create(ctx, account); err != nil {
			return err
		}
		if account.Role == RoleDoctor {
			return s.providers.CreateDefaultProfile(ctx, account.ID, account.Name)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(account.ID.String(), account.Role)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// Login verifies the credential and returns the account and a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (*Account, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if httperr.KindOf(err) == httperr.NotFound {
			return nil, "", httperr.Unauthenticatedf("invalid credentials")
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, "", httperr.Unauthenticatedf("invalid credentials")
	}

	token, err := s.tokens.Issue(account.ID.String(), account.Role)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.accounts.GetByID(ctx, id)
}

func (s *Service) ListByRole(ctx context.Context, role string, limit, offset int) ([]*Account, int, error) {
	return s.accounts.ListByRole(ctx, role, limit, offset)
}

// ResolveAccount implements auth.AccountResolver, letting the authorization
// gate attach a live identity to each authenticated request.
func (s *Service) ResolveAccount(ctx context.Context, id uuid.UUID) (*auth.Identity, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &auth.Identity{
		AccountID: account.ID,
		Name:      account.Name,
		Email:     account.Email,
		Role:      account.Role,
	}, nil
}
