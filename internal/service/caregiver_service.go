package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"calmcompanion/internal/repository"
)

const (
	caregiverPINKey  = "caregiver_pin"
	caregiverSubject = "caregiver"
	caregiverIssuer  = "calmcompanion"

	// After maxUnlockFailures consecutive wrong PINs, unlock is refused for
	// unlockLockout, doubling with each further failure up to maxUnlockLockout.
	maxUnlockFailures = 5
	unlockLockout     = time.Minute
	maxUnlockLockout  = time.Hour
)

var (
	ErrPINNotSet       = errors.New("caregiver PIN not set")
	ErrInvalidPIN      = errors.New("invalid caregiver PIN")
	ErrInvalidPINValue = errors.New("PIN must be 4 to 8 digits")
	ErrInvalidToken    = errors.New("invalid caregiver token")
	ErrUnlockLocked    = errors.New("too many failed unlock attempts")
)

// CaregiverService guards destructive operations behind a numeric PIN.
// A successful unlock yields a short-lived signed token.
type CaregiverService struct {
	cs     *repository.CollectionStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu          sync.Mutex // serialises unlock attempts
	failures    int
	lockedUntil time.Time
}

// NewCaregiverService creates a caregiver service. An empty secret is replaced
// by a random one, so tokens do not survive a restart.
func NewCaregiverService(cs *repository.CollectionStore, secret string, ttl time.Duration) (*CaregiverService, error) {
	key := []byte(secret)
	if len(key) == 0 {
		log.Println("Warning: JWT_SECRET not configured, caregiver tokens will not survive a restart")
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate token secret: %w", err)
		}
	}
	return &CaregiverService{cs: cs, secret: key, ttl: ttl, now: time.Now}, nil
}

// HasPIN reports whether the lock is configured
func (s *CaregiverService) HasPIN(ctx context.Context) bool {
	return repository.GetGlobal(ctx, s.cs, caregiverPINKey, "") != ""
}

// SetPIN replaces the caregiver PIN
func (s *CaregiverService) SetPIN(ctx context.Context, pin string) error {
	if !validPIN(pin) {
		return ErrInvalidPINValue
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash PIN: %w", err)
	}
	if err := repository.SaveGlobal(ctx, s.cs, caregiverPINKey, string(hash)); err != nil {
		return fmt.Errorf("failed to save PIN: %w", err)
	}
	return nil
}

// LockedUntil returns when unlocking is allowed again, or the zero time when
// it is allowed now
func (s *CaregiverService) LockedUntil() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lockedUntilLocked()
}

func (s *CaregiverService) lockedUntilLocked() time.Time {
	if s.now().Before(s.lockedUntil) {
		return s.lockedUntil
	}
	return time.Time{}
}

func (s *CaregiverService) recordFailureLocked() {
	s.failures++
	if s.failures < maxUnlockFailures {
		return
	}
	lockout := unlockLockout << min(s.failures-maxUnlockFailures, 6)
	if lockout > maxUnlockLockout {
		lockout = maxUnlockLockout
	}
	s.lockedUntil = s.now().Add(lockout)
	log.Printf("Warning: caregiver unlock locked for %s after %d failed attempts", lockout, s.failures)
}

// Unlock checks pin and issues a token valid for the configured TTL.
// Repeated wrong PINs lock unlocking out with ErrUnlockLocked.
func (s *CaregiverService) Unlock(ctx context.Context, pin string) (string, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lockedUntilLocked().IsZero() {
		return "", time.Time{}, ErrUnlockLocked
	}

	hash := repository.GetGlobal(ctx, s.cs, caregiverPINKey, "")
	if hash == "" {
		return "", time.Time{}, ErrPINNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		s.recordFailureLocked()
		return "", time.Time{}, ErrInvalidPIN
	}
	s.failures = 0
	s.lockedUntil = time.Time{}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    caregiverIssuer,
		Subject:   caregiverSubject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks a token issued by Unlock
func (s *CaregiverService) Verify(token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(caregiverSubject),
		jwt.WithIssuer(caregiverIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return nil
}

func validPIN(pin string) bool {
	if len(pin) < 4 || len(pin) > 8 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
