package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dondesang/appdon/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIncompleteSignup   = errors.New("signup form not accepted")
)

// DonorStore is the part of the store the authenticator needs.
type DonorStore interface {
	Register(u models.User) (models.User, error)
	Login(u models.User) models.User
	Credentials(email string) (models.User, bool)
}

// DefaultName is given to donors who log in without ever signing up.
const DefaultName = "Utilisateur"

type Mode string

const (
	ModeSimulated Mode = "simulated"
	ModeVerified  Mode = "verified"
)

type Authenticator struct {
	mode    Mode
	delay   time.Duration
	store   DonorStore
	isAdmin func(email string) bool
	now     func() time.Time
	log     *zap.Logger
}

func NewAuthenticator(mode Mode, delay time.Duration, st DonorStore, isAdmin func(string) bool, log *zap.Logger) *Authenticator {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &Authenticator{mode: mode, delay: delay, store: st, isAdmin: isAdmin, now: time.Now, log: log}
}

// role grants admin only to verified logins. A simulated login accepts any password, so it
// never carries the admin role.
func (a *Authenticator) role(email string) models.Role {
	if a.mode == ModeVerified && a.isAdmin(email) {
		return models.RoleAdmin
	}
	return models.RoleDonor
}

// wait simulates backend latency. It returns early with the context error on cancellation.
func (a *Authenticator) wait(ctx context.Context) error {
	if a.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(a.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Login authenticates a donor. In simulated mode any non-empty credentials succeed and an
// unknown email gets a fresh donor record.
func (a *Authenticator) Login(ctx context.Context, f LoginForm) (models.User, error) {
	if err := f.Validate(); err != nil {
		return models.User{}, err
	}
	if err := a.wait(ctx); err != nil {
		return models.User{}, err
	}

	if a.mode == ModeVerified {
		existing, ok := a.store.Credentials(f.Email)
		if !ok || existing.PasswordHash == "" ||
			bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(f.Password)) != nil {
			a.log.Info("login rejected", zap.String("email", f.Email))
			return models.User{}, ErrInvalidCredentials
		}
		existing.Role = a.role(existing.Email)
		return a.store.Login(existing), nil
	}

	u := a.store.Login(models.User{
		Email:       f.Email,
		Name:        DefaultName,
		MemberSince: a.now(),
		Role:        a.role(f.Email),
	})
	a.log.Debug("simulated login", zap.String("email", u.Email), zap.String("role", string(u.Role)))
	return u, nil
}

// Signup registers the donor described by an accepted draft.
func (a *Authenticator) Signup(ctx context.Context, d *SignupDraft) (models.User, error) {
	f, ok := d.Form()
	if !ok {
		return models.User{}, ErrIncompleteSignup
	}
	if err := a.wait(ctx); err != nil {
		return models.User{}, err
	}
	u := d.User()
	u.MemberSince = a.now()
	u.Role = a.role(u.Email)
	if a.mode == ModeVerified {
		hash, err := bcrypt.GenerateFromPassword([]byte(f.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	created, err := a.store.Register(u)
	if err != nil {
		return models.User{}, err
	}
	a.log.Info("donor registered", zap.String("email", created.Email), zap.String("mode", string(a.mode)))
	return created, nil
}
