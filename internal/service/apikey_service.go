package service

import (
	"errors"
	"strings"
	"time"

	"github.com/tradejournal/internal/models"
	"github.com/tradejournal/internal/repository"
	"github.com/tradejournal/pkg/keygen"
)

var (
	ErrAPIKeyInvalid = errors.New("invalid api key")
	ErrAPIKeyRevoked = errors.New("api key revoked")
)

// LastUsedRecorder receives fire-and-forget last-used touches for
// resolved keys. Implementations must not block.
type LastUsedRecorder interface {
	Touch(keyID uint)
}

// APIKeyService resolves inbound API keys to their owning user and
// manages the key lifecycle (create, list, revoke)
type APIKeyService struct {
	keyRepo  *repository.APIKeyRepository
	recorder LastUsedRecorder
}

// NewAPIKeyService creates a new APIKeyService. recorder may be nil.
func NewAPIKeyService(keyRepo *repository.APIKeyRepository, recorder LastUsedRecorder) *APIKeyService {
	return &APIKeyService{
		keyRepo:  keyRepo,
		recorder: recorder,
	}
}

// Resolve looks up a raw API key and returns the owning user id.
// An unknown key yields ErrAPIKeyInvalid, a revoked key ErrAPIKeyRevoked.
// On success the key's last-used timestamp is touched asynchronously;
// that side effect never fails the request.
func (s *APIKeyService) Resolve(rawKey string) (uint, error) {
	key, err := s.keyRepo.GetByKey(strings.TrimSpace(rawKey))
	if err != nil {
		if errors.Is(err, repository.ErrAPIKeyNotFound) {
			return 0, ErrAPIKeyInvalid
		}
		return 0, err
	}

	if key.Revoked() {
		return 0, ErrAPIKeyRevoked
	}

	if s.recorder != nil {
		s.recorder.Touch(key.ID)
	}

	return key.UserID, nil
}

// CreateKeyRequest is the create-key form
type CreateKeyRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// CreateKey generates a new API key for a user. The full secret is
// returned exactly once; afterwards only the masked form is shown.
func (s *APIKeyService) CreateKey(userID uint, req *CreateKeyRequest) (*models.APIKey, error) {
	key := &models.APIKey{
		UserID: userID,
		Name:   strings.TrimSpace(req.Name),
		Key:    keygen.NewKey(),
	}
	if err := s.keyRepo.Create(key); err != nil {
		return nil, err
	}
	return key, nil
}

// KeyInfo is the list view of an API key: the secret is masked
type KeyInfo struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	MaskedKey  string     `json:"key"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
	RevokedAt  *time.Time `json:"revoked_at"`
}

// ListKeys returns all keys for a user with masked secrets
func (s *APIKeyService) ListKeys(userID uint) ([]KeyInfo, error) {
	keys, err := s.keyRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	infos := make([]KeyInfo, 0, len(keys))
	for _, k := range keys {
		infos = append(infos, KeyInfo{
			ID:         k.ID,
			Name:       k.Name,
			MaskedKey:  keygen.Mask(k.Key),
			CreatedAt:  k.CreatedAt,
			LastUsedAt: k.LastUsedAt,
			RevokedAt:  k.RevokedAt,
		})
	}
	return infos, nil
}

// RevokeKey permanently revokes one of the user's keys
func (s *APIKeyService) RevokeKey(userID, keyID uint) error {
	return s.keyRepo.Revoke(keyID, userID, time.Now().UTC())
}
