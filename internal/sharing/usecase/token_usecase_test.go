package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/healthshare/internal/config"
	apperrors "github.com/allisson/healthshare/internal/errors"
	sharingDomain "github.com/allisson/healthshare/internal/sharing/domain"
)

// mockTokenRepository is a mock implementation of TokenRepository for testing.
type mockTokenRepository struct {
	mock.Mock
}

func (m *mockTokenRepository) Create(ctx context.Context, token *sharingDomain.ShareToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepository) Get(ctx context.Context, tokenID uuid.UUID) (*sharingDomain.ShareToken, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sharingDomain.ShareToken), args.Error(1)
}

func (m *mockTokenRepository) GetBySecretDigest(ctx context.Context, digest string) (*sharingDomain.ShareToken, error) {
	args := m.Called(ctx, digest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sharingDomain.ShareToken), args.Error(1)
}

func (m *mockTokenRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*sharingDomain.ShareToken, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sharingDomain.ShareToken), args.Error(1)
}

func (m *mockTokenRepository) Deactivate(ctx context.Context, tokenID uuid.UUID) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *mockTokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// mockGrantRepository is a mock implementation of GrantRepository for testing.
type mockGrantRepository struct {
	mock.Mock
}

func (m *mockGrantRepository) Create(ctx context.Context, grant *sharingDomain.Grant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *mockGrantRepository) ListDetailsByRecipient(
	ctx context.Context,
	recipientID uuid.UUID,
	now time.Time,
) ([]*sharingDomain.GrantDetail, error) {
	args := m.Called(ctx, recipientID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sharingDomain.GrantDetail), args.Error(1)
}

func (m *mockGrantRepository) ExistsLiveGrant(
	ctx context.Context,
	ownerID, recipientID uuid.UUID,
	now time.Time,
) (bool, error) {
	args := m.Called(ctx, ownerID, recipientID, now)
	return args.Bool(0), args.Error(1)
}

// mockSecretService is a mock implementation of service.SecretService for testing.
type mockSecretService struct {
	mock.Mock
}

func (m *mockSecretService) GenerateSecret() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockSecretService) GenerateAccessCode() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockSecretService) DigestSecret(secret string) string {
	args := m.Called(secret)
	return args.String(0)
}

func (m *mockSecretService) VerifySecret(presented, stored string) bool {
	args := m.Called(presented, stored)
	return args.Bool(0)
}

// passthroughTxManager runs the function without a real transaction.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestUseCase(
	tokenRepo *mockTokenRepository,
	grantRepo *mockGrantRepository,
	secretService *mockSecretService,
	now time.Time,
) *tokenUseCase {
	cfg := &config.Config{ShareTokenValidityDays: 7}
	uc := NewTokenUseCase(cfg, passthroughTxManager{}, tokenRepo, grantRepo, secretService).(*tokenUseCase)
	uc.now = func() time.Time { return now }
	return uc
}

func patientIdentity(id uuid.UUID) sharingDomain.Identity {
	return sharingDomain.Identity{UserID: id, Role: sharingDomain.RolePatient}
}

func doctorIdentity(id uuid.UUID) sharingDomain.Identity {
	return sharingDomain.Identity{UserID: id, Role: sharingDomain.RoleDoctor}
}

func TestTokenUseCase_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Success_DefaultValidity", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		grantRepo := &mockGrantRepository{}
		secretService := &mockSecretService{}
		uc := newTestUseCase(tokenRepo, grantRepo, secretService, now)

		ownerID := uuid.Must(uuid.NewV7())
		secretService.On("GenerateSecret").Return("plain-secret", "secret-digest", nil)
		tokenRepo.On("Create", ctx, mock.AnythingOfType("*domain.ShareToken")).Return(nil)

		token, err := uc.Create(ctx, patientIdentity(ownerID), &sharingDomain.CreateTokenInput{
			Label:         "Dr. Smith",
			RecipientHint: "smith@clinic.example",
		})
		require.NoError(t, err)

		assert.Equal(t, ownerID, token.OwnerID)
		assert.Equal(t, "plain-secret", token.Secret)
		assert.Equal(t, "secret-digest", token.SecretDigest)
		assert.Equal(t, "Dr. Smith", token.Label)
		assert.True(t, token.Active)
		assert.Equal(t, now, token.CreatedAt)
		assert.Equal(t, now.Add(7*24*time.Hour), token.ExpiresAt)

		tokenRepo.AssertExpectations(t)
		secretService.AssertExpectations(t)
	})

	t.Run("Success_CustomValidity", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		grantRepo := &mockGrantRepository{}
		secretService := &mockSecretService{}
		uc := newTestUseCase(tokenRepo, grantRepo, secretService, now)

		secretService.On("GenerateSecret").Return("plain-secret", "secret-digest", nil)
		tokenRepo.On("Create", ctx, mock.AnythingOfType("*domain.ShareToken")).Return(nil)

		token, err := uc.Create(ctx, patientIdentity(uuid.Must(uuid.NewV7())), &sharingDomain.CreateTokenInput{
			Label:        "short lived",
			ValidityDays: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, now.Add(24*time.Hour), token.ExpiresAt)
	})

	t.Run("Success_FallbackValidityWhenConfigUnset", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		secretService := &mockSecretService{}
		uc := NewTokenUseCase(
			&config.Config{},
			passthroughTxManager{},
			tokenRepo,
			&mockGrantRepository{},
			secretService,
		).(*tokenUseCase)
		uc.now = func() time.Time { return now }

		secretService.On("GenerateSecret").Return("plain-secret", "secret-digest", nil)
		tokenRepo.On("Create", ctx, mock.AnythingOfType("*domain.ShareToken")).Return(nil)

		token, err := uc.Create(ctx, patientIdentity(uuid.Must(uuid.NewV7())), &sharingDomain.CreateTokenInput{
			Label: "no config default",
		})
		require.NoError(t, err)
		assert.Equal(t, now.Add(sharingDomain.DefaultValidityDays*24*time.Hour), token.ExpiresAt)
	})

	t.Run("Error_BlankLabel", func(t *testing.T) {
		uc := newTestUseCase(&mockTokenRepository{}, &mockGrantRepository{}, &mockSecretService{}, now)

		token, err := uc.Create(ctx, patientIdentity(uuid.Must(uuid.NewV7())), &sharingDomain.CreateTokenInput{
			Label: "   ",
		})
		assert.Nil(t, token)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})

	t.Run("Error_NegativeValidity", func(t *testing.T) {
		uc := newTestUseCase(&mockTokenRepository{}, &mockGrantRepository{}, &mockSecretService{}, now)

		token, err := uc.Create(ctx, patientIdentity(uuid.Must(uuid.NewV7())), &sharingDomain.CreateTokenInput{
			Label:        "bad",
			ValidityDays: -1,
		})
		assert.Nil(t, token)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})
}

func TestTokenUseCase_List(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ownerID := uuid.Must(uuid.NewV7())

	t.Run("Success_Owner", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		uc := newTestUseCase(tokenRepo, &mockGrantRepository{}, &mockSecretService{}, now)

		expected := []*sharingDomain.ShareToken{{ID: uuid.Must(uuid.NewV7()), OwnerID: ownerID}}
		tokenRepo.On("ListByOwner", ctx, ownerID, 0, 50).Return(expected, nil)

		tokens, err := uc.List(ctx, patientIdentity(ownerID), ownerID, 0, 50)
		assert.NoError(t, err)
		assert.Equal(t, expected, tokens)
	})

	t.Run("Success_Admin", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		uc := newTestUseCase(tokenRepo, &mockGrantRepository{}, &mockSecretService{}, now)

		adminID := uuid.Must(uuid.NewV7())
		tokenRepo.On("ListByOwner", ctx, ownerID, 0, 50).Return([]*sharingDomain.ShareToken{}, nil)

		_, err := uc.List(ctx, sharingDomain.Identity{UserID: adminID, Role: sharingDomain.RoleAdmin}, ownerID, 0, 50)
		assert.NoError(t, err)
	})

	t.Run("Error_OtherUser", func(t *testing.T) {
		uc := newTestUseCase(&mockTokenRepository{}, &mockGrantRepository{}, &mockSecretService{}, now)

		strangerID := uuid.Must(uuid.NewV7())
		tokens, err := uc.List(ctx, patientIdentity(strangerID), ownerID, 0, 50)
		assert.Nil(t, tokens)
		assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	})
}

func TestTokenUseCase_Deactivate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ownerID := uuid.Must(uuid.NewV7())
	tokenID := uuid.Must(uuid.NewV7())

	existing := &sharingDomain.ShareToken{ID: tokenID, OwnerID: ownerID, Active: true}

	t.Run("Success_Owner", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		uc := newTestUseCase(tokenRepo, &mockGrantRepository{}, &mockSecretService{}, now)

		tokenRepo.On("Get", ctx, tokenID).Return(existing, nil)
		tokenRepo.On("Deactivate", ctx, tokenID).Return(nil)

		err := uc.Deactivate(ctx, patientIdentity(ownerID), tokenID)
		assert.NoError(t, err)
		tokenRepo.AssertExpectations(t)
	})

	t.Run("Success_Admin", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		uc := newTestUseCase(tokenRepo, &mockGrantRepository{}, &mockSecretService{}, now)

		adminID := uuid.Must(uuid.NewV7())
		tokenRepo.On("Get", ctx, tokenID).Return(existing, nil)
		tokenRepo.On("Deactivate", ctx, tokenID).Return(nil)

		err := uc.Deactivate(ctx, sharingDomain.Identity{UserID: adminID, Role: sharingDomain.RoleAdmin}, tokenID)
		assert.NoError(t, err)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		uc := newTestUseCase(tokenRepo, &mockGrantRepository{}, &mockSecretService{}, now)

		tokenRepo.On("Get", ctx, tokenID).Return(nil, sharingDomain.ErrTokenNotFound)

		err := uc.Deactivate(ctx, patientIdentity(ownerID), tokenID)
		assert.True(t, apperrors.Is(err, sharingDomain.ErrTokenNotFound))
	})

	t.Run("Error_NotOwner", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		uc := newTestUseCase(tokenRepo, &mockGrantRepository{}, &mockSecretService{}, now)

		strangerID := uuid.Must(uuid.NewV7())
		tokenRepo.On("Get", ctx, tokenID).Return(existing, nil)

		err := uc.Deactivate(ctx, patientIdentity(strangerID), tokenID)
		assert.True(t, apperrors.Is(err, sharingDomain.ErrNotTokenOwner))
		tokenRepo.AssertNotCalled(t, "Deactivate", ctx, tokenID)
	})
}

func TestTokenUseCase_GetBySecret(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	usableToken := &sharingDomain.ShareToken{
		ID:        uuid.Must(uuid.NewV7()),
		OwnerID:   uuid.Must(uuid.NewV7()),
		Secret:    "stored-secret",
		ExpiresAt: now.Add(24 * time.Hour),
		Active:    true,
	}

	t.Run("Success", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		secretService := &mockSecretService{}
		uc := newTestUseCase(tokenRepo, &mockGrantRepository{}, secretService, now)

		secretService.On("DigestSecret", "stored-secret").Return("digest")
		secretService.On("VerifySecret", "stored-secret", "stored-secret").Return(true)
		tokenRepo.On("GetBySecretDigest", ctx, "digest").Return(usableToken, nil)

		token, err := uc.GetBySecret(ctx, "stored-secret")
		assert.NoError(t, err)
		assert.Equal(t, usableToken.ID, token.ID)
	})

	t.Run("Error_UnknownSecret", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		secretService := &mockSecretService{}
		uc := newTestUseCase(tokenRepo, &mockGrantRepository{}, secretService, now)

		secretService.On("DigestSecret", "nope").Return("nope-digest")
		tokenRepo.On("GetBySecretDigest", ctx, "nope-digest").Return(nil, sharingDomain.ErrTokenNotFound)

		token, err := uc.GetBySecret(ctx, "nope")
		assert.Nil(t, token)
		assert.True(t, apperrors.Is(err, sharingDomain.ErrTokenNotFound))
	})

	t.Run("Error_VerificationFails", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		secretService := &mockSecretService{}
		uc := newTestUseCase(tokenRepo, &mockGrantRepository{}, secretService, now)

		secretService.On("DigestSecret", "colliding").Return("digest")
		secretService.On("VerifySecret", "colliding", "stored-secret").Return(false)
		tokenRepo.On("GetBySecretDigest", ctx, "digest").Return(usableToken, nil)

		token, err := uc.GetBySecret(ctx, "colliding")
		assert.Nil(t, token)
		assert.True(t, apperrors.Is(err, sharingDomain.ErrTokenNotFound))
	})

	t.Run("Error_UnusableLooksLikeNotFound", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		secretService := &mockSecretService{}
		uc := newTestUseCase(tokenRepo, &mockGrantRepository{}, secretService, now)

		expiredToken := &sharingDomain.ShareToken{
			ID:        uuid.Must(uuid.NewV7()),
			Secret:    "stored-secret",
			ExpiresAt: now.Add(-time.Hour),
			Active:    true,
		}
		secretService.On("DigestSecret", "stored-secret").Return("digest")
		secretService.On("VerifySecret", "stored-secret", "stored-secret").Return(true)
		tokenRepo.On("GetBySecretDigest", ctx, "digest").Return(expiredToken, nil)

		token, err := uc.GetBySecret(ctx, "stored-secret")
		assert.Nil(t, token)
		assert.True(t, apperrors.Is(err, sharingDomain.ErrTokenNotFound))
		assert.False(t, apperrors.Is(err, apperrors.ErrExpired))
	})
}

func TestTokenUseCase_Accept(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recipientID := uuid.Must(uuid.NewV7())

	token := &sharingDomain.ShareToken{
		ID:        uuid.Must(uuid.NewV7()),
		OwnerID:   uuid.Must(uuid.NewV7()),
		Secret:    "stored-secret",
		ExpiresAt: now.Add(24 * time.Hour),
		Active:    true,
	}

	setupResolve := func(tokenRepo *mockTokenRepository, secretService *mockSecretService, tok *sharingDomain.ShareToken) {
		secretService.On("DigestSecret", "stored-secret").Return("digest")
		secretService.On("VerifySecret", "stored-secret", "stored-secret").Return(true)
		tokenRepo.On("GetBySecretDigest", ctx, "digest").Return(tok, nil)
	}

	t.Run("Success", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		grantRepo := &mockGrantRepository{}
		secretService := &mockSecretService{}
		uc := newTestUseCase(tokenRepo, grantRepo, secretService, now)

		setupResolve(tokenRepo, secretService, token)
		grantRepo.On("Create", ctx, mock.AnythingOfType("*domain.Grant")).Return(nil)

		grant, err := uc.Accept(ctx, doctorIdentity(recipientID), "stored-secret")
		require.NoError(t, err)
		assert.Equal(t, token.ID, grant.TokenID)
		assert.Equal(t, recipientID, grant.RecipientID)
		assert.Equal(t, now, grant.AcceptedAt)
	})

	t.Run("Error_Expired", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		grantRepo := &mockGrantRepository{}
		secretService := &mockSecretService{}
		uc := newTestUseCase(tokenRepo, grantRepo, secretService, now)

		expired := &sharingDomain.ShareToken{
			ID:        uuid.Must(uuid.NewV7()),
			Secret:    "stored-secret",
			ExpiresAt: now.Add(-time.Minute),
			Active:    true,
		}
		setupResolve(tokenRepo, secretService, expired)

		grant, err := uc.Accept(ctx, doctorIdentity(recipientID), "stored-secret")
		assert.Nil(t, grant)
		assert.True(t, apperrors.Is(err, sharingDomain.ErrTokenExpired))
		grantRepo.AssertNotCalled(t, "Create", ctx, mock.Anything)
	})

	t.Run("Error_Deactivated", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		grantRepo := &mockGrantRepository{}
		secretService := &mockSecretService{}
		uc := newTestUseCase(tokenRepo, grantRepo, secretService, now)

		inactive := &sharingDomain.ShareToken{
			ID:        uuid.Must(uuid.NewV7()),
			Secret:    "stored-secret",
			ExpiresAt: now.Add(24 * time.Hour),
			Active:    false,
		}
		setupResolve(tokenRepo, secretService, inactive)

		grant, err := uc.Accept(ctx, doctorIdentity(recipientID), "stored-secret")
		assert.Nil(t, grant)
		assert.True(t, apperrors.Is(err, sharingDomain.ErrTokenExpired))
	})

	t.Run("Error_AlreadyAccepted", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		grantRepo := &mockGrantRepository{}
		secretService := &mockSecretService{}
		uc := newTestUseCase(tokenRepo, grantRepo, secretService, now)

		setupResolve(tokenRepo, secretService, token)
		grantRepo.On("Create", ctx, mock.AnythingOfType("*domain.Grant")).
			Return(sharingDomain.ErrGrantAlreadyExists)

		grant, err := uc.Accept(ctx, doctorIdentity(recipientID), "stored-secret")
		assert.Nil(t, grant)
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	})

	t.Run("UsableJustBeforeExpiry", func(t *testing.T) {
		// One-day token accepted 23 hours in, rejected 25 hours in.
		created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		oneDayToken := &sharingDomain.ShareToken{
			ID:        uuid.Must(uuid.NewV7()),
			Secret:    "stored-secret",
			CreatedAt: created,
			ExpiresAt: created.Add(24 * time.Hour),
			Active:    true,
		}

		tokenRepo := &mockTokenRepository{}
		grantRepo := &mockGrantRepository{}
		secretService := &mockSecretService{}
		uc := newTestUseCase(tokenRepo, grantRepo, secretService, created.Add(23*time.Hour))

		setupResolve(tokenRepo, secretService, oneDayToken)
		grantRepo.On("Create", ctx, mock.AnythingOfType("*domain.Grant")).Return(nil)

		_, err := uc.Accept(ctx, doctorIdentity(recipientID), "stored-secret")
		assert.NoError(t, err)

		uc.now = func() time.Time { return created.Add(25 * time.Hour) }
		grant, err := uc.Accept(ctx, doctorIdentity(recipientID), "stored-secret")
		assert.Nil(t, grant)
		assert.True(t, apperrors.Is(err, sharingDomain.ErrTokenExpired))
	})
}

func TestTokenUseCase_ListGrantsForRecipient(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recipientID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		grantRepo := &mockGrantRepository{}
		uc := newTestUseCase(&mockTokenRepository{}, grantRepo, &mockSecretService{}, now)

		expected := []*sharingDomain.GrantDetail{
			{Grant: sharingDomain.Grant{ID: uuid.Must(uuid.NewV7()), RecipientID: recipientID}},
		}
		grantRepo.On("ListDetailsByRecipient", ctx, recipientID, now).Return(expected, nil)

		details, err := uc.ListGrantsForRecipient(ctx, doctorIdentity(recipientID), recipientID)
		assert.NoError(t, err)
		assert.Equal(t, expected, details)
	})

	t.Run("Error_OtherUser", func(t *testing.T) {
		uc := newTestUseCase(&mockTokenRepository{}, &mockGrantRepository{}, &mockSecretService{}, now)

		strangerID := uuid.Must(uuid.NewV7())
		details, err := uc.ListGrantsForRecipient(ctx, doctorIdentity(strangerID), recipientID)
		assert.Nil(t, details)
		assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	})
}

func TestTokenUseCase_CleanExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tokenRepo := &mockTokenRepository{}
	uc := newTestUseCase(tokenRepo, &mockGrantRepository{}, &mockSecretService{}, now)

	retention := 30 * 24 * time.Hour
	tokenRepo.On("DeleteExpiredBefore", ctx, now.Add(-retention)).Return(int64(3), nil)

	deleted, err := uc.CleanExpired(ctx, retention)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	tokenRepo.AssertExpectations(t)
}
