package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jonah-Douglas/Campfire/domain"
	"github.com/Jonah-Douglas/Campfire/internal/http/middleware"
	"github.com/Jonah-Douglas/Campfire/internal/mocks"
)

func performJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// injectUser simulates the auth middleware for handlers that require it.
func injectUser(user *domain.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, "7")
		c.Set(middleware.CtxUserRole, user.Role())
		c.Set(middleware.CtxUser, user)
	}
}

func newAuthRouter(authSvc domain.AuthService, user *domain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandlers(authSvc)
	r := gin.New()
	r.POST("/auth/request-otp", h.RequestOTP)
	r.POST("/auth/verify-otp", h.VerifyOTP)
	r.POST("/auth/refresh-token", h.Refresh)
	authed := r.Group("/", injectUser(user))
	authed.POST("/auth/logout", h.Logout)
	authed.POST("/auth/logout-others", h.LogoutOthers)
	authed.GET("/auth/me", h.Me)
	return r
}

func TestRequestOTPHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*mocks.MockAuthService)
		expectedStatus int
		checkBody      func(t *testing.T, body map[string]interface{})
	}{
		{
			name:           "sends otp",
			body:           RequestOTPRequest{PhoneNumber: "+15551234567"},
			setupMock:      func(m *mocks.MockAuthService) {},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				data := body["data"].(map[string]interface{})
				assert.Equal(t, "OTP sent successfully", data["message"])
				assert.NotContains(t, data, "debug_otp")
			},
		},
		{
			name: "debug otp echoed when service provides it",
			body: RequestOTPRequest{PhoneNumber: "+15551234567"},
			setupMock: func(m *mocks.MockAuthService) {
				m.RequestOTPFunc = func(ctx context.Context, phone string) (*domain.OTPDelivery, error) {
					return &domain.OTPDelivery{Message: "OTP generated (debug mode)", DebugCode: "123456"}, nil
				}
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				data := body["data"].(map[string]interface{})
				assert.Equal(t, "123456", data["debug_otp"])
			},
		},
		{
			name:           "rejects non-e164 phone",
			body:           RequestOTPRequest{PhoneNumber: "555-123-4567"},
			setupMock:      func(m *mocks.MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "rejects missing phone",
			body:           map[string]string{},
			setupMock:      func(m *mocks.MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "throttled",
			body: RequestOTPRequest{PhoneNumber: "+15551234567"},
			setupMock: func(m *mocks.MockAuthService) {
				m.RequestOTPFunc = func(ctx context.Context, phone string) (*domain.OTPDelivery, error) {
					return nil, &domain.ThrottledError{RetryAfter: 42 * time.Second}
				}
			},
			expectedStatus: http.StatusTooManyRequests,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, float64(42), body["retry_after"])
			},
		},
		{
			name: "sms delivery failure",
			body: RequestOTPRequest{PhoneNumber: "+15551234567"},
			setupMock: func(m *mocks.MockAuthService) {
				m.RequestOTPFunc = func(ctx context.Context, phone string) (*domain.OTPDelivery, error) {
					return nil, &domain.SMSError{Kind: domain.SMSErrorProviderUnavailable}
				}
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authSvc := mocks.NewMockAuthService()
			tt.setupMock(authSvc)
			router := newAuthRouter(authSvc, &domain.User{ID: 7, IsActive: true})

			w := performJSON(t, router, http.MethodPost, "/auth/request-otp", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.checkBody != nil {
				tt.checkBody(t, decodeBody(t, w))
			}
		})
	}
}

func TestRequestOTPHandler_SetsRetryAfterHeader(t *testing.T) {
	authSvc := mocks.NewMockAuthService()
	authSvc.RequestOTPFunc = func(ctx context.Context, phone string) (*domain.OTPDelivery, error) {
		return nil, &domain.ThrottledError{RetryAfter: 30 * time.Second}
	}
	router := newAuthRouter(authSvc, &domain.User{ID: 7, IsActive: true})

	w := performJSON(t, router, http.MethodPost, "/auth/request-otp", RequestOTPRequest{PhoneNumber: "+15551234567"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
}

func TestVerifyOTPHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	okResult := &domain.AuthResult{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "bearer",
		ExpiresIn:    900,
		IsNewUser:    true,
	}

	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*mocks.MockAuthService)
		expectedStatus int
		checkBody      func(t *testing.T, body map[string]interface{})
	}{
		{
			name: "issues tokens",
			body: VerifyOTPRequest{PhoneNumber: "+15551234567", OTP: "123456"},
			setupMock: func(m *mocks.MockAuthService) {
				m.VerifyOTPFunc = func(ctx context.Context, phone, code, ua, ip string) (*domain.AuthResult, error) {
					return okResult, nil
				}
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				data := body["data"].(map[string]interface{})
				assert.Equal(t, "access", data["access_token"])
				assert.Equal(t, "refresh", data["refresh_token"])
				assert.Equal(t, "bearer", data["token_type"])
				assert.Equal(t, true, data["is_new_user"])
			},
		},
		{
			name:           "rejects short otp",
			body:           VerifyOTPRequest{PhoneNumber: "+15551234567", OTP: "123"},
			setupMock:      func(m *mocks.MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "rejects non-numeric otp",
			body:           VerifyOTPRequest{PhoneNumber: "+15551234567", OTP: "12a456"},
			setupMock:      func(m *mocks.MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "wrong code reports attempts left",
			body: VerifyOTPRequest{PhoneNumber: "+15551234567", OTP: "000000"},
			setupMock: func(m *mocks.MockAuthService) {
				m.VerifyOTPFunc = func(ctx context.Context, phone, code, ua, ip string) (*domain.AuthResult, error) {
					return nil, &domain.InvalidOTPError{AttemptsLeft: 3}
				}
			},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, float64(3), body["attempts_left"])
			},
		},
		{
			name: "no pending otp",
			body: VerifyOTPRequest{PhoneNumber: "+15551234567", OTP: "123456"},
			setupMock: func(m *mocks.MockAuthService) {
				m.VerifyOTPFunc = func(ctx context.Context, phone, code, ua, ip string) (*domain.AuthResult, error) {
					return nil, domain.ErrOTPNotFound
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "expired otp",
			body: VerifyOTPRequest{PhoneNumber: "+15551234567", OTP: "123456"},
			setupMock: func(m *mocks.MockAuthService) {
				m.VerifyOTPFunc = func(ctx context.Context, phone, code, ua, ip string) (*domain.AuthResult, error) {
					return nil, domain.ErrOTPExpired
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "max attempts",
			body: VerifyOTPRequest{PhoneNumber: "+15551234567", OTP: "123456"},
			setupMock: func(m *mocks.MockAuthService) {
				m.VerifyOTPFunc = func(ctx context.Context, phone, code, ua, ip string) (*domain.AuthResult, error) {
					return nil, domain.ErrOTPMaxAttempts
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "inactive account",
			body: VerifyOTPRequest{PhoneNumber: "+15551234567", OTP: "123456"},
			setupMock: func(m *mocks.MockAuthService) {
				m.VerifyOTPFunc = func(ctx context.Context, phone, code, ua, ip string) (*domain.AuthResult, error) {
					return nil, domain.ErrUserInactive
				}
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authSvc := mocks.NewMockAuthService()
			tt.setupMock(authSvc)
			router := newAuthRouter(authSvc, &domain.User{ID: 7, IsActive: true})

			w := performJSON(t, router, http.MethodPost, "/auth/verify-otp", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.checkBody != nil {
				tt.checkBody(t, decodeBody(t, w))
			}
		})
	}
}

func TestRefreshHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		setupMock      func(*mocks.MockAuthService)
		expectedStatus int
	}{
		{
			name: "rotates tokens",
			setupMock: func(m *mocks.MockAuthService) {
				m.RefreshFunc = func(ctx context.Context, token, ua, ip string) (*domain.AuthResult, error) {
					return &domain.AuthResult{AccessToken: "new-access", RefreshToken: "new-refresh", TokenType: "bearer", ExpiresIn: 900}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "invalid token",
			setupMock: func(m *mocks.MockAuthService) {
				m.RefreshFunc = func(ctx context.Context, token, ua, ip string) (*domain.AuthResult, error) {
					return nil, domain.ErrTokenInvalid
				}
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "revoked session",
			setupMock: func(m *mocks.MockAuthService) {
				m.RefreshFunc = func(ctx context.Context, token, ua, ip string) (*domain.AuthResult, error) {
					return nil, domain.ErrSessionNotFound
				}
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "inactive user",
			setupMock: func(m *mocks.MockAuthService) {
				m.RefreshFunc = func(ctx context.Context, token, ua, ip string) (*domain.AuthResult, error) {
					return nil, domain.ErrUserInactive
				}
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authSvc := mocks.NewMockAuthService()
			tt.setupMock(authSvc)
			router := newAuthRouter(authSvc, &domain.User{ID: 7, IsActive: true})

			w := performJSON(t, router, http.MethodPost, "/auth/refresh-token", RefreshRequest{RefreshToken: "some-refresh"})
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestLogoutHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		authSvc := mocks.NewMockAuthService()
		var gotUserID uint
		authSvc.LogoutFunc = func(ctx context.Context, currentUserID uint, refreshToken string) error {
			gotUserID = currentUserID
			return nil
		}
		router := newAuthRouter(authSvc, &domain.User{ID: 7, IsActive: true})

		w := performJSON(t, router, http.MethodPost, "/auth/logout", LogoutRequest{RefreshToken: "refresh"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uint(7), gotUserID)
	})

	t.Run("another user's session is forbidden", func(t *testing.T) {
		authSvc := mocks.NewMockAuthService()
		authSvc.LogoutFunc = func(ctx context.Context, currentUserID uint, refreshToken string) error {
			return domain.ErrForbidden
		}
		router := newAuthRouter(authSvc, &domain.User{ID: 7, IsActive: true})

		w := performJSON(t, router, http.MethodPost, "/auth/logout", LogoutRequest{RefreshToken: "refresh"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing token is a validation error", func(t *testing.T) {
		authSvc := mocks.NewMockAuthService()
		router := newAuthRouter(authSvc, &domain.User{ID: 7, IsActive: true})

		w := performJSON(t, router, http.MethodPost, "/auth/logout", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogoutOthersHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authSvc := mocks.NewMockAuthService()
	authSvc.LogoutOthersFunc = func(ctx context.Context, currentUserID uint, keepRefreshToken string) (int64, error) {
		return 2, nil
	}
	router := newAuthRouter(authSvc, &domain.User{ID: 7, IsActive: true})

	w := performJSON(t, router, http.MethodPost, "/auth/logout-others", LogoutRequest{RefreshToken: "refresh"})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["sessions_invalidated"])
}

func TestMeHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	user := &domain.User{
		ID:                7,
		PhoneNumber:       "+15551234567",
		Email:             "ada@example.com",
		FirstName:         "Ada",
		IsActive:          true,
		IsProfileComplete: true,
	}
	router := newAuthRouter(mocks.NewMockAuthService(), user)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "+15551234567", data["phone_number"])
	assert.Equal(t, "ada@example.com", data["email"])
	assert.Equal(t, true, data["is_profile_complete"])
}
