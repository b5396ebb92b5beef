package auth

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/storefront/internal/config"
	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/kvstore"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrDuplicateIdentity  = errors.New("user already exists")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrPasswordRequired   = errors.New("password is required")
)

// RegisterInput carries the fields of a new registration.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Service is the credential store: the registered identities collection plus
// the session of the currently authenticated user, both kept in the KV store.
type Service struct {
	kv     kvstore.Store
	config config.Auth
	now    func() time.Time

	mu      sync.Mutex
	session entities.Session
}

// NewService creates a new authentication service. Call Restore to pick up a
// session persisted by a previous process.
func NewService(kv kvstore.Store, cfg config.Auth) *Service {
	return &Service{
		kv:     kv,
		config: cfg,
		now:    time.Now,
	}
}

// NormalizeEmail is the canonical form identities are keyed by.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an identity and logs it in.
func (s *Service) Register(in RegisterInput) (*entities.Identity, error) {
	email := NormalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, ErrPasswordRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	identities, err := s.loadIdentities()
	if err != nil {
		return nil, err
	}
	if findIdentity(identities, email) >= 0 {
		return nil, ErrDuplicateIdentity
	}

	passwordHash, err := HashPassword(in.Password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	identity := entities.Identity{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		CreatedAt:    s.now().UTC(),
	}
	identities = append(identities, identity)
	if err := kvstore.SaveJSON(s.kv, entities.StorageKeyIdentities, identities); err != nil {
		return nil, fmt.Errorf("failed to save identities: %w", err)
	}

	if err := s.startSessionLocked(identity); err != nil {
		return nil, err
	}
	public := identity.Public()
	return &public, nil
}

// Login verifies the credentials and stores the session snapshot.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(email, password string) (*entities.Identity, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	identities, err := s.loadIdentities()
	if err != nil {
		return nil, err
	}
	idx := findIdentity(identities, email)
	if idx < 0 {
		return nil, ErrInvalidCredentials
	}
	if err := CheckPassword(password, identities[idx].PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	if err := s.startSessionLocked(identities[idx]); err != nil {
		return nil, err
	}
	public := identities[idx].Public()
	return &public, nil
}

// Logout clears the session from storage and memory. Calling it without a
// session is a no-op.
func (s *Service) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(entities.StorageKeySession); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	s.session = entities.Session{}
	return nil
}

// ResetPassword replaces the stored hash of a registered identity.
func (s *Service) ResetPassword(email, newPassword string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrEmailRequired
	}
	if newPassword == "" {
		return ErrPasswordRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	identities, err := s.loadIdentities()
	if err != nil {
		return err
	}
	idx := findIdentity(identities, email)
	if idx < 0 {
		return ErrNotFound
	}

	passwordHash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}
	identities[idx].PasswordHash = passwordHash

	if err := kvstore.SaveJSON(s.kv, entities.StorageKeyIdentities, identities); err != nil {
		return fmt.Errorf("failed to save identities: %w", err)
	}
	return nil
}

// Restore loads the persisted session snapshot. A missing or unreadable
// snapshot leaves the service logged out.
func (s *Service) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var session entities.Session
	found, err := kvstore.LoadJSON(s.kv, entities.StorageKeySession, &session)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if !found || session.CurrentUser == nil || session.CurrentUser.Email == "" {
		s.session = entities.Session{}
		return nil
	}

	user := session.CurrentUser.Public()
	s.session = entities.Session{
		CurrentUser:     &user,
		IsAuthenticated: true,
		LoginAt:         session.LoginAt,
	}
	log.Printf("Auth: restored session for %s", user.Email)
	return nil
}

// IsAuthenticated reports whether a user is logged in.
func (s *Service) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.IsAuthenticated
}

// CurrentUser returns a copy of the logged-in identity, or nil.
func (s *Service) CurrentUser() *entities.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.CurrentUser == nil {
		return nil
	}
	user := *s.session.CurrentUser
	return &user
}

// Session returns a copy of the session state.
func (s *Service) Session() entities.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.session
	if session.CurrentUser != nil {
		user := *session.CurrentUser
		session.CurrentUser = &user
	}
	return session
}

func (s *Service) startSessionLocked(identity entities.Identity) error {
	user := identity.Public()
	session := entities.Session{
		CurrentUser:     &user,
		IsAuthenticated: true,
		LoginAt:         s.now().UTC(),
	}
	if err := kvstore.SaveJSON(s.kv, entities.StorageKeySession, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.session = session
	return nil
}

func (s *Service) loadIdentities() ([]entities.Identity, error) {
	var identities []entities.Identity
	if _, err := kvstore.LoadJSON(s.kv, entities.StorageKeyIdentities, &identities); err != nil {
		return nil, fmt.Errorf("failed to load identities: %w", err)
	}
	return identities, nil
}

func findIdentity(identities []entities.Identity, email string) int {
	for i, identity := range identities {
		if NormalizeEmail(identity.Email) == email {
			return i
		}
	}
	return -1
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	// RFC 5321 limit is 254
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}
