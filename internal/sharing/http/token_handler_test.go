package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/allisson/healthshare/internal/errors"
	"github.com/allisson/healthshare/internal/httputil"
	sharingDomain "github.com/allisson/healthshare/internal/sharing/domain"
	"github.com/allisson/healthshare/internal/sharing/http/dto"
)

type mockTokenUseCase struct {
	mock.Mock
}

func (m *mockTokenUseCase) Create(ctx context.Context, caller sharingDomain.Identity, input *sharingDomain.CreateTokenInput) (*sharingDomain.ShareToken, error) {
	args := m.Called(ctx, caller, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sharingDomain.ShareToken), args.Error(1)
}

func (m *mockTokenUseCase) List(ctx context.Context, caller sharingDomain.Identity, ownerID uuid.UUID, offset, limit int) ([]*sharingDomain.ShareToken, error) {
	args := m.Called(ctx, caller, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sharingDomain.ShareToken), args.Error(1)
}

func (m *mockTokenUseCase) Deactivate(ctx context.Context, caller sharingDomain.Identity, tokenID uuid.UUID) error {
	args := m.Called(ctx, caller, tokenID)
	return args.Error(0)
}

func (m *mockTokenUseCase) GetBySecret(ctx context.Context, secret string) (*sharingDomain.ShareToken, error) {
	args := m.Called(ctx, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sharingDomain.ShareToken), args.Error(1)
}

func (m *mockTokenUseCase) Accept(ctx context.Context, caller sharingDomain.Identity, secret string) (*sharingDomain.Grant, error) {
	args := m.Called(ctx, caller, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sharingDomain.Grant), args.Error(1)
}

func (m *mockTokenUseCase) ListGrantsForRecipient(ctx context.Context, caller sharingDomain.Identity, recipientID uuid.UUID) ([]*sharingDomain.GrantDetail, error) {
	args := m.Called(ctx, caller, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sharingDomain.GrantDetail), args.Error(1)
}

func (m *mockTokenUseCase) CleanExpired(ctx context.Context, retention time.Duration) (int64, error) {
	args := m.Called(ctx, retention)
	return args.Get(0).(int64), args.Error(1)
}

func setupTokenHandler(t *testing.T) (*TokenHandler, *mockTokenUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := new(mockTokenUseCase)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewTokenHandler(mockUseCase, logger), mockUseCase
}

func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func intPtr(v int) *int {
	return &v
}

func patientCaller() sharingDomain.Identity {
	return sharingDomain.Identity{
		UserID: uuid.Must(uuid.NewV7()),
		Role:   sharingDomain.RolePatient,
	}
}

func doctorCaller() sharingDomain.Identity {
	return sharingDomain.Identity{
		UserID: uuid.Must(uuid.NewV7()),
		Role:   sharingDomain.RoleDoctor,
	}
}

func TestTokenHandler_CreateHandler(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		caller := patientCaller()
		now := time.Now().UTC()

		request := dto.CreateTokenRequest{
			Label:         "For Dr. Silva",
			RecipientHint: "silva@clinic.example",
			ValidityDays:  intPtr(7),
		}

		expectedToken := &sharingDomain.ShareToken{
			ID:            uuid.Must(uuid.NewV7()),
			OwnerID:       caller.UserID,
			Secret:        "tok_0123456789abcdef",
			Label:         "For Dr. Silva",
			RecipientHint: "silva@clinic.example",
			CreatedAt:     now,
			ExpiresAt:     now.Add(7 * 24 * time.Hour),
			Active:        true,
		}

		mockUseCase.On("Create", mock.Anything, caller, mock.MatchedBy(func(input *sharingDomain.CreateTokenInput) bool {
			return input.Label == "For Dr. Silva" && input.ValidityDays == 7
		})).Return(expectedToken, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tokens", request)
		httputil.SetIdentity(c, caller)

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.CreateTokenResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, expectedToken.ID.String(), response.ID)
		assert.Equal(t, "tok_0123456789abcdef", response.Secret)
		assert.Equal(t, "For Dr. Silva", response.Label)
		assert.True(t, response.Active)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MissingIdentity", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/tokens", dto.CreateTokenRequest{Label: "x"})

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockUseCase.AssertNotCalled(t, "Create")
	})

	t.Run("Error_BlankLabel", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		request := dto.CreateTokenRequest{Label: "   "}

		c, w := createTestContext(http.MethodPost, "/v1/tokens", request)
		httputil.SetIdentity(c, patientCaller())

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Create")
	})

	t.Run("Error_InvalidRecipientHint", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		request := dto.CreateTokenRequest{
			Label:         "For my doctor",
			RecipientHint: "not-an-email",
		}

		c, w := createTestContext(http.MethodPost, "/v1/tokens", request)
		httputil.SetIdentity(c, patientCaller())

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Create")
	})

	t.Run("Error_ZeroValidityDays", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		// An explicit zero is not the same as omitting the field
		request := dto.CreateTokenRequest{
			Label:        "For my doctor",
			ValidityDays: intPtr(0),
		}

		c, w := createTestContext(http.MethodPost, "/v1/tokens", request)
		httputil.SetIdentity(c, patientCaller())

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Create")
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/tokens", nil)
		c.Request.Body = io.NopCloser(bytes.NewReader([]byte("{invalid")))
		httputil.SetIdentity(c, patientCaller())

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Create")
	})
}

func TestTokenHandler_ListHandler(t *testing.T) {
	t.Run("Success_OwnerList", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		caller := patientCaller()
		now := time.Now().UTC()

		tokens := []*sharingDomain.ShareToken{
			{
				ID:        uuid.Must(uuid.NewV7()),
				OwnerID:   caller.UserID,
				Label:     "newest",
				CreatedAt: now,
				ExpiresAt: now.Add(24 * time.Hour),
				Active:    true,
			},
		}

		mockUseCase.On("List", mock.Anything, caller, caller.UserID, 0, 50).
			Return(tokens, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/tokens?owner_id="+caller.UserID.String(), nil)
		httputil.SetIdentity(c, caller)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListTokensResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Len(t, response.Data, 1)
		assert.Equal(t, "newest", response.Data[0].Label)
		assert.NotContains(t, w.Body.String(), "secret")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidOwnerID", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/tokens?owner_id=not-a-uuid", nil)
		httputil.SetIdentity(c, patientCaller())

		handler.ListHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUseCase.AssertNotCalled(t, "List")
	})

	t.Run("Error_Forbidden", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		caller := patientCaller()
		otherOwner := uuid.Must(uuid.NewV7())

		mockUseCase.On("List", mock.Anything, caller, otherOwner, 0, 50).
			Return(nil, apperrors.ErrForbidden).Once()

		c, w := createTestContext(http.MethodGet, "/v1/tokens?owner_id="+otherOwner.String(), nil)
		httputil.SetIdentity(c, caller)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockUseCase.AssertExpectations(t)
	})
}

func TestTokenHandler_DeactivateHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		caller := patientCaller()
		tokenID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Deactivate", mock.Anything, caller, tokenID).
			Return(nil).Once()

		c, w := createTestContext(http.MethodPut, "/v1/tokens/"+tokenID.String()+"/deactivate", nil)
		c.Params = gin.Params{{Key: "id", Value: tokenID.String()}}
		httputil.SetIdentity(c, caller)

		handler.DeactivateHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		caller := patientCaller()
		tokenID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Deactivate", mock.Anything, caller, tokenID).
			Return(sharingDomain.ErrTokenNotFound).Once()

		c, w := createTestContext(http.MethodPut, "/v1/tokens/"+tokenID.String()+"/deactivate", nil)
		c.Params = gin.Params{{Key: "id", Value: tokenID.String()}}
		httputil.SetIdentity(c, caller)

		handler.DeactivateHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_NotOwner", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		caller := patientCaller()
		tokenID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Deactivate", mock.Anything, caller, tokenID).
			Return(sharingDomain.ErrNotTokenOwner).Once()

		c, w := createTestContext(http.MethodPut, "/v1/tokens/"+tokenID.String()+"/deactivate", nil)
		c.Params = gin.Params{{Key: "id", Value: tokenID.String()}}
		httputil.SetIdentity(c, caller)

		handler.DeactivateHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Error_InvalidID", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		c, w := createTestContext(http.MethodPut, "/v1/tokens/abc/deactivate", nil)
		c.Params = gin.Params{{Key: "id", Value: "abc"}}
		httputil.SetIdentity(c, patientCaller())

		handler.DeactivateHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUseCase.AssertNotCalled(t, "Deactivate")
	})
}

func TestTokenHandler_GetBySecretHandler(t *testing.T) {
	t.Run("Success_Preview", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		ownerID := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()

		token := &sharingDomain.ShareToken{
			ID:            uuid.Must(uuid.NewV7()),
			OwnerID:       ownerID,
			Label:         "For Dr. Silva",
			RecipientHint: "silva@clinic.example",
			Notes:         "private owner notes",
			ExpiresAt:     now.Add(24 * time.Hour),
			Active:        true,
		}

		mockUseCase.On("GetBySecret", mock.Anything, "tok_secret").
			Return(token, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/tokens/by-secret/tok_secret", nil)
		c.Params = gin.Params{{Key: "secret", Value: "tok_secret"}}
		httputil.SetIdentity(c, doctorCaller())

		handler.GetBySecretHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.TokenPreviewResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, ownerID.String(), response.OwnerID)
		assert.Equal(t, "For Dr. Silva", response.Label)
		// The preview must not leak the token id or the owner's notes.
		assert.NotContains(t, w.Body.String(), token.ID.String())
		assert.NotContains(t, w.Body.String(), "private owner notes")
	})

	t.Run("Error_UnknownSecret", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		mockUseCase.On("GetBySecret", mock.Anything, "tok_unknown").
			Return(nil, sharingDomain.ErrTokenNotFound).Once()

		c, w := createTestContext(http.MethodGet, "/v1/tokens/by-secret/tok_unknown", nil)
		c.Params = gin.Params{{Key: "secret", Value: "tok_unknown"}}
		httputil.SetIdentity(c, doctorCaller())

		handler.GetBySecretHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTokenHandler_AcceptHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		caller := doctorCaller()
		now := time.Now().UTC()

		grant := &sharingDomain.Grant{
			ID:          uuid.Must(uuid.NewV7()),
			TokenID:     uuid.Must(uuid.NewV7()),
			RecipientID: caller.UserID,
			AcceptedAt:  now,
		}

		mockUseCase.On("Accept", mock.Anything, caller, "tok_secret").
			Return(grant, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tokens/by-secret/tok_secret/accept", nil)
		c.Params = gin.Params{{Key: "secret", Value: "tok_secret"}}
		httputil.SetIdentity(c, caller)

		handler.AcceptHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.GrantResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, grant.ID.String(), response.ID)
		assert.Equal(t, caller.UserID.String(), response.RecipientID)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_ExpiredToken", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		caller := doctorCaller()

		mockUseCase.On("Accept", mock.Anything, caller, "tok_stale").
			Return(nil, sharingDomain.ErrTokenExpired).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tokens/by-secret/tok_stale/accept", nil)
		c.Params = gin.Params{{Key: "secret", Value: "tok_stale"}}
		httputil.SetIdentity(c, caller)

		handler.AcceptHandler(c)

		assert.Equal(t, http.StatusGone, w.Code)
	})

	t.Run("Error_UnknownSecret", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		caller := doctorCaller()

		mockUseCase.On("Accept", mock.Anything, caller, "tok_unknown").
			Return(nil, sharingDomain.ErrTokenNotFound).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tokens/by-secret/tok_unknown/accept", nil)
		c.Params = gin.Params{{Key: "secret", Value: "tok_unknown"}}
		httputil.SetIdentity(c, caller)

		handler.AcceptHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_AlreadyAccepted", func(t *testing.T) {
		handler, mockUseCase := setupTokenHandler(t)

		caller := doctorCaller()

		mockUseCase.On("Accept", mock.Anything, caller, "tok_secret").
			Return(nil, sharingDomain.ErrGrantAlreadyExists).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tokens/by-secret/tok_secret/accept", nil)
		c.Params = gin.Params{{Key: "secret", Value: "tok_secret"}}
		httputil.SetIdentity(c, caller)

		handler.AcceptHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
