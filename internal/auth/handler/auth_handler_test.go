package handler_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SirapobM/Api-test/internal/auth/domain"
	"github.com/SirapobM/Api-test/internal/auth/handler"
	"github.com/SirapobM/Api-test/internal/auth/service"
	"github.com/SirapobM/Api-test/internal/logging"
	"github.com/SirapobM/Api-test/internal/mocks"
	"github.com/gofiber/fiber/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testApp struct {
	app        *fiber.App
	mockRepo   *mocks.MockUserRepository
	mockTokens *mocks.MockTokenGenerator
}

func newTestApp(t *testing.T, opts ...service.Option) *testApp {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockRepo := mocks.NewMockUserRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	userService := service.NewUserService(mockRepo, mockTokens, log, opts...)
	authHandler := handler.NewAuthHandler(userService, log)

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler)

	return &testApp{app: app, mockRepo: mockRepo, mockTokens: mockTokens}
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	return body
}

// expectAuthenticated wires the repo lookup the auth middleware performs for
// a live token.
func (ta *testApp) expectAuthenticated(token string, user *domain.User) {
	record := &domain.AccessToken{
		ID:        "at-1",
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(time.Minute),
	}
	ta.mockRepo.EXPECT().GetByAccessToken(gomock.Any(), token).Return(user, record, nil)
}

func TestRegister(t *testing.T) {
	t.Run("success never echoes the password", func(t *testing.T) {
		ta := newTestApp(t)
		ta.mockRepo.EXPECT().GetByEmail(gomock.Any(), "a@x.com").Return(nil, nil)
		ta.mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		resp, err := ta.app.Test(jsonRequest(http.MethodPost, "/api/v1/register",
			`{"name":"Alice","email":"a@x.com","password":"secret1"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "a@x.com")
		assert.NotContains(t, string(raw), "secret1")
		assert.NotContains(t, string(raw), "password")
	})

	t.Run("validation failure lists violations", func(t *testing.T) {
		ta := newTestApp(t)

		resp, err := ta.app.Test(jsonRequest(http.MethodPost, "/api/v1/register",
			`{"name":"","email":"nope","password":"x"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Len(t, body["errors"], 3)
	})

	t.Run("malformed body", func(t *testing.T) {
		ta := newTestApp(t)

		resp, err := ta.app.Test(jsonRequest(http.MethodPost, "/api/v1/register", `{not json`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("store failure is a generic 500", func(t *testing.T) {
		ta := newTestApp(t)
		ta.mockRepo.EXPECT().GetByEmail(gomock.Any(), "a@x.com").Return(nil, errors.New("db down"))

		resp, err := ta.app.Test(jsonRequest(http.MethodPost, "/api/v1/register",
			`{"name":"Alice","email":"a@x.com","password":"secret1"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "an unexpected error occurred", body["error"])
	})
}

func TestLogin(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &domain.User{ID: "user-123", Name: "Alice", Email: "a@x.com", PasswordHash: string(hashed)}

	t.Run("success returns both tokens and expiries", func(t *testing.T) {
		ta := newTestApp(t)
		ta.mockRepo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
		ta.mockTokens.EXPECT().NewToken().Return("access-token", nil)
		ta.mockTokens.EXPECT().NewToken().Return("refresh-token", nil)
		ta.mockTokens.EXPECT().AccessTokenTTL().Return(60 * time.Second)
		ta.mockTokens.EXPECT().RefreshTokenTTL().Return(120 * time.Second)
		ta.mockRepo.EXPECT().StoreAccessToken(gomock.Any(), gomock.Any()).Return(nil)
		ta.mockRepo.EXPECT().SetRefreshToken(gomock.Any(), user.ID, "refresh-token", gomock.Any()).Return(nil)

		resp, err := ta.app.Test(jsonRequest(http.MethodPost, "/api/v1/login",
			`{"email":"a@x.com","password":"secret1"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "access-token", body["access_token"])
		assert.Equal(t, "refresh-token", body["refresh_token"])
		assert.NotEmpty(t, body["access_token_expires_at"])
		assert.NotEmpty(t, body["refresh_token_expires_at"])
	})

	t.Run("bad password and unknown email share one shape", func(t *testing.T) {
		ta := newTestApp(t)
		ta.mockRepo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
		ta.mockRepo.EXPECT().GetByEmail(gomock.Any(), "nobody@x.com").Return(nil, nil)

		respWrong, err := ta.app.Test(jsonRequest(http.MethodPost, "/api/v1/login",
			`{"email":"a@x.com","password":"wrong-1"}`))
		require.NoError(t, err)

		respGhost, err := ta.app.Test(jsonRequest(http.MethodPost, "/api/v1/login",
			`{"email":"nobody@x.com","password":"secret1"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, respWrong.StatusCode)
		assert.Equal(t, http.StatusUnauthorized, respGhost.StatusCode)
		assert.Equal(t, decodeBody(t, respWrong), decodeBody(t, respGhost))
	})
}

func TestRefresh(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ta := newTestApp(t)
		ta.mockTokens.EXPECT().NewToken().Return("new-access-token", nil)
		ta.mockTokens.EXPECT().AccessTokenTTL().Return(60 * time.Second).Times(2)
		ta.mockRepo.EXPECT().RotateAccessTokens(gomock.Any(), "refresh-token", gomock.Any(), gomock.Any()).
			Return(&domain.User{ID: "user-123"}, nil)

		resp, err := ta.app.Test(jsonRequest(http.MethodPost, "/api/v1/refresh",
			`{"refresh_token":"refresh-token"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "new-access-token", body["access_token"])
		assert.Equal(t, "Bearer", body["token_type"])
		assert.Equal(t, float64(60), body["expires_in"])
	})

	t.Run("invalid or expired", func(t *testing.T) {
		ta := newTestApp(t)
		ta.mockTokens.EXPECT().NewToken().Return("unused", nil)
		ta.mockTokens.EXPECT().AccessTokenTTL().Return(60 * time.Second)
		ta.mockRepo.EXPECT().RotateAccessTokens(gomock.Any(), "stale", gomock.Any(), gomock.Any()).
			Return(nil, nil)

		resp, err := ta.app.Test(jsonRequest(http.MethodPost, "/api/v1/refresh",
			`{"refresh_token":"stale"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogout(t *testing.T) {
	user := &domain.User{ID: "user-123", Name: "Alice", Email: "a@x.com"}

	t.Run("revokes every access token", func(t *testing.T) {
		ta := newTestApp(t)
		ta.expectAuthenticated("live-token", user)
		ta.mockRepo.EXPECT().RevokeAccessTokens(gomock.Any(), user.ID).Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/logout", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer live-token")

		resp, err := ta.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Successfully logged out", body["message"])
	})

	t.Run("unauthenticated", func(t *testing.T) {
		ta := newTestApp(t)

		resp, err := ta.app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/logout", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestMe(t *testing.T) {
	user := &domain.User{ID: "user-123", Name: "Alice", Email: "a@x.com", PasswordHash: "hash"}

	t.Run("returns the resolved caller", func(t *testing.T) {
		ta := newTestApp(t)
		ta.expectAuthenticated("live-token", user)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer live-token")

		resp, err := ta.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "a@x.com")
		assert.NotContains(t, string(raw), "hash")
	})

	t.Run("expired token", func(t *testing.T) {
		ta := newTestApp(t)
		record := &domain.AccessToken{
			UserID:    user.ID,
			Token:     "expired-token",
			ExpiresAt: time.Now().Add(-time.Second),
		}
		ta.mockRepo.EXPECT().GetByAccessToken(gomock.Any(), "expired-token").Return(user, record, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer expired-token")

		resp, err := ta.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed authorization header", func(t *testing.T) {
		ta := newTestApp(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
		req.Header.Set(fiber.HeaderAuthorization, "BearerNoSpace")

		resp, err := ta.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestUpdateUser(t *testing.T) {
	caller := &domain.User{ID: "user-123", Name: "Alice", Email: "a@x.com"}

	t.Run("partial update", func(t *testing.T) {
		ta := newTestApp(t)
		ta.expectAuthenticated("live-token", caller)
		ta.mockRepo.EXPECT().GetByID(gomock.Any(), "user-123").
			Return(&domain.User{ID: "user-123", Name: "Alice", Email: "a@x.com"}, nil)
		ta.mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		req := jsonRequest(http.MethodPatch, "/api/v1/user/user-123", `{"name":"Alicia"}`)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer live-token")

		resp, err := ta.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "User updated successfully", body["message"])
	})

	t.Run("unknown id", func(t *testing.T) {
		ta := newTestApp(t)
		ta.expectAuthenticated("live-token", caller)
		ta.mockRepo.EXPECT().GetByID(gomock.Any(), "ghost").Return(nil, nil)

		req := jsonRequest(http.MethodPatch, "/api/v1/user/ghost", `{"name":"Alicia"}`)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer live-token")

		resp, err := ta.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteUser(t *testing.T) {
	caller := &domain.User{ID: "user-123", Name: "Alice", Email: "a@x.com"}

	t.Run("success", func(t *testing.T) {
		ta := newTestApp(t)
		ta.expectAuthenticated("live-token", caller)
		ta.mockRepo.EXPECT().Delete(gomock.Any(), "user-456").Return(true, nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/user/user-456", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer live-token")

		resp, err := ta.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "User deleted successfully", body["message"])
	})

	t.Run("unknown id", func(t *testing.T) {
		ta := newTestApp(t)
		ta.expectAuthenticated("live-token", caller)
		ta.mockRepo.EXPECT().Delete(gomock.Any(), "ghost").Return(false, nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/user/ghost", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer live-token")

		resp, err := ta.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
