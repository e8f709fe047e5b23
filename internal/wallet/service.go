package wallet

import (
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Permission scopes a session key's capabilities.
type Permission string

const (
	PermissionTrade Permission = "trade"
	PermissionView  Permission = "view"
)

// SessionKey is a delegated signing identity with reduced scope.
type SessionKey struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Address     string       `json:"address"`
	CreatedAt   time.Time    `json:"created_at"`
	LastUsed    time.Time    `json:"last_used"`
	IsActive    bool         `json:"is_active"`
	Permissions []Permission `json:"permissions"`
}

// Service manages session keys. Storage is in-memory; keys do not survive
// a restart and holders must re-delegate.
type Service struct {
	logger *zap.Logger

	mu   sync.RWMutex
	keys map[uuid.UUID]*SessionKey
}

// NewService creates the wallet service
func NewService(logger *zap.Logger) *Service {
	return &Service{
		logger: logger,
		keys:   make(map[uuid.UUID]*SessionKey),
	}
}

// CreateSessionKey registers a new session key. When no address is supplied
// a fresh keypair is generated and its address used.
func (s *Service) CreateSessionKey(name string, permissions []Permission, address string) (*SessionKey, error) {
	if name == "" {
		return nil, fmt.Errorf("session key name is required")
	}
	if len(permissions) == 0 {
		permissions = []Permission{PermissionView}
	}

	if address == "" {
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session key: %w", err)
		}
		address = crypto.PubkeyToAddress(key.PublicKey).Hex()
	} else {
		checksummed, err := ValidateAddress(address)
		if err != nil {
			return nil, err
		}
		address = checksummed
	}

	now := time.Now().UTC()
	sessionKey := &SessionKey{
		ID:          uuid.New(),
		Name:        name,
		Address:     address,
		CreatedAt:   now,
		LastUsed:    now,
		IsActive:    true,
		Permissions: permissions,
	}

	s.mu.Lock()
	s.keys[sessionKey.ID] = sessionKey
	s.mu.Unlock()

	s.logger.Info("Session key created",
		zap.String("id", sessionKey.ID.String()),
		zap.String("address", address))
	return sessionKey, nil
}

// RevokeSessionKey deactivates a session key. Revoking an already-revoked
// key succeeds.
func (s *Service) RevokeSessionKey(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, exists := s.keys[id]
	if !exists {
		return false
	}
	if !key.IsActive {
		return true
	}

	key.IsActive = false
	key.LastUsed = time.Now().UTC()
	s.logger.Info("Session key revoked", zap.String("id", id.String()))
	return true
}

// GetSessionKey returns a session key by ID.
func (s *Service) GetSessionKey(id uuid.UUID) (*SessionKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, exists := s.keys[id]
	if !exists {
		return nil, false
	}
	copied := *key
	return &copied, true
}

// ListSessionKeys returns all session keys, active and revoked.
func (s *Service) ListSessionKeys() []SessionKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SessionKey, 0, len(s.keys))
	for _, key := range s.keys {
		out = append(out, *key)
	}
	return out
}

// TouchSessionKey records use of an active key and checks the permission.
func (s *Service) TouchSessionKey(id uuid.UUID, required Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, exists := s.keys[id]
	if !exists || !key.IsActive {
		return fmt.Errorf("session key not active: %s", id)
	}

	for _, permission := range key.Permissions {
		if permission == required {
			key.LastUsed = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("session key %s lacks %s permission", id, required)
}
