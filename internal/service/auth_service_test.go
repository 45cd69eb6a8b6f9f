package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/service"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

type fixture struct {
	svc     *service.AuthService
	users   *repository.StubUserRepository
	revoked *repository.StubRevocationList
	auth    *auth.Authority
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			SecretKey:             "test-secret",
			Algorithm:             "HS256",
			AccessTokenTTLMinutes: 90,
			BcryptCost:            bcrypt.MinCost,
		},
	}

	authority, err := auth.NewAuthority(cfg.Auth)
	if err != nil {
		t.Fatalf("NewAuthority returned an error: %v", err)
	}

	users := repository.NewStubUserRepository()
	revoked := repository.NewStubRevocationList()

	svc := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:       users,
		Authority:      authority,
		RevocationList: revoked,
		Dispatcher:     events.NewInMemoryDispatcher(),
		Logger:         zap.NewNop(),
	})
	return &fixture{svc: svc, users: users, revoked: revoked, auth: authority}
}

func signUpInput() service.SignUpInput {
	return service.SignUpInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter22",
		Bio:      "engineer",
		Location: "London",
		JobTitle: "Analyst",
	}
}

func TestSignUp(t *testing.T) {
	f := newFixture(t)

	user, err := f.svc.SignUp(context.Background(), signUpInput())
	if err != nil {
		t.Fatalf("SignUp returned an error: %v", err)
	}
	if user.ID == "" {
		t.Error("user.ID is empty")
	}
	if user.PasswordHash == "hunter22" {
		t.Error("password stored in plaintext")
	}

	stored, err := f.users.GetByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail returned an error: %v", err)
	}
	if stored.Name != "Ada" || stored.JobTitle != "Analyst" {
		t.Errorf("stored user = %+v, want profile fields preserved", stored)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.SignUp(ctx, signUpInput()); err != nil {
		t.Fatalf("first SignUp returned an error: %v", err)
	}

	input := signUpInput()
	input.Name = "Imposter"
	_, err := f.svc.SignUp(ctx, input)

	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("second SignUp = %v, want a DomainError", err)
	}
	if domainErr.HTTPStatus != http.StatusBadRequest {
		t.Errorf("HTTPStatus = %d, want %d", domainErr.HTTPStatus, http.StatusBadRequest)
	}
	if got := f.users.Len(); got != 1 {
		t.Errorf("store holds %d users after duplicate signup, want 1", got)
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.SignUp(ctx, signUpInput())
	if err != nil {
		t.Fatalf("SignUp returned an error: %v", err)
	}

	session, err := f.svc.Login(ctx, "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login returned an error: %v", err)
	}
	if session.Token == "" {
		t.Fatal("session token is empty")
	}

	identity, err := f.auth.Verify(session.Token)
	if err != nil {
		t.Fatalf("Verify returned an error: %v", err)
	}
	if identity.SubjectID != user.ID {
		t.Errorf("token subject = %q, want %q", identity.SubjectID, user.ID)
	}
}

func TestLoginFailureIsUniform(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.SignUp(ctx, signUpInput()); err != nil {
		t.Fatalf("SignUp returned an error: %v", err)
	}

	// Unknown email and wrong password must be indistinguishable to the
	// caller: same status, same message.
	_, unknownErr := f.svc.Login(ctx, "nobody@example.com", "hunter22")
	_, badPassErr := f.svc.Login(ctx, "ada@example.com", "wrong")

	var unknown, badPass *apperrors.DomainError
	if !errors.As(unknownErr, &unknown) || !errors.As(badPassErr, &badPass) {
		t.Fatalf("errors = %v / %v, want DomainErrors", unknownErr, badPassErr)
	}
	if unknown.HTTPStatus != http.StatusUnauthorized || badPass.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("statuses = %d / %d, want both %d", unknown.HTTPStatus, badPass.HTTPStatus, http.StatusUnauthorized)
	}
	if unknown.Message != badPass.Message {
		t.Errorf("messages differ: %q vs %q", unknown.Message, badPass.Message)
	}
	if unknown.Code != badPass.Code {
		t.Errorf("codes differ: %q vs %q", unknown.Code, badPass.Code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.SignUp(ctx, signUpInput()); err != nil {
		t.Fatalf("SignUp returned an error: %v", err)
	}
	session, err := f.svc.Login(ctx, "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login returned an error: %v", err)
	}

	identity, err := f.auth.Verify(session.Token)
	if err != nil {
		t.Fatalf("Verify returned an error: %v", err)
	}

	if err := f.svc.Logout(ctx, &auth.Principal{User: session.User, Token: identity}); err != nil {
		t.Fatalf("Logout returned an error: %v", err)
	}

	revoked, err := f.revoked.IsRevoked(ctx, identity.TokenID)
	if err != nil {
		t.Fatalf("IsRevoked returned an error: %v", err)
	}
	if !revoked {
		t.Error("token id not on the revocation list after logout")
	}
}
