package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jonah-Douglas/Campfire/domain"
	"github.com/Jonah-Douglas/Campfire/internal/mocks"
)

func newUserRouter(userSvc domain.UserService, caller *domain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewUserHandlers(userSvc)
	r := gin.New()
	authed := r.Group("/", injectUser(caller))
	authed.PATCH("/users/me/complete-profile", h.CompleteProfile)
	authed.GET("/users", h.List)
	authed.GET("/users/:user_id", h.Get)
	authed.PATCH("/users/:user_id", h.Update)
	authed.DELETE("/users/:user_id", h.Delete)
	return r
}

func TestCompleteProfileHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("completes profile", func(t *testing.T) {
		userSvc := mocks.NewMockUserService()
		userSvc.CompleteProfileFunc = func(ctx context.Context, user *domain.User, profile domain.ProfileUpdate) (*domain.User, error) {
			user.FirstName = profile.FirstName
			user.LastName = profile.LastName
			user.Email = profile.Email
			user.IsProfileComplete = true
			return user, nil
		}
		caller := &domain.User{ID: 7, PhoneNumber: "+15551234567", IsActive: true}
		router := newUserRouter(userSvc, caller)

		w := performJSON(t, router, http.MethodPatch, "/users/me/complete-profile", CompleteProfileRequest{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
		})
		require.Equal(t, http.StatusOK, w.Code)

		data := decodeBody(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "Ada", data["first_name"])
		assert.Equal(t, true, data["is_profile_complete"])
	})

	t.Run("second completion conflicts", func(t *testing.T) {
		userSvc := mocks.NewMockUserService()
		userSvc.CompleteProfileFunc = func(ctx context.Context, user *domain.User, profile domain.ProfileUpdate) (*domain.User, error) {
			return nil, domain.ErrProfileAlreadyComplete
		}
		router := newUserRouter(userSvc, &domain.User{ID: 7, IsActive: true, IsProfileComplete: true})

		w := performJSON(t, router, http.MethodPatch, "/users/me/complete-profile", CompleteProfileRequest{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("rejects bad email", func(t *testing.T) {
		router := newUserRouter(mocks.NewMockUserService(), &domain.User{ID: 7, IsActive: true})

		w := performJSON(t, router, http.MethodPatch, "/users/me/complete-profile", CompleteProfileRequest{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "not-an-email",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListUsersHandler(t *testing.T) {
	userSvc := mocks.NewMockUserService()
	userSvc.ListUsersFunc = func(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
		return []domain.User{
			{ID: 1, PhoneNumber: "+15551230001"},
			{ID: 2, PhoneNumber: "+15551230002"},
		}, 2, nil
	}
	router := newUserRouter(userSvc, &domain.User{ID: 1, IsSuperuser: true, IsActive: true})

	req := httptest.NewRequest(http.MethodGet, "/users?offset=0&limit=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
	assert.Len(t, data["users"], 2)
}

func TestGetUserHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("found", func(t *testing.T) {
		userSvc := mocks.NewMockUserService()
		userSvc.GetUserFunc = func(ctx context.Context, id uint) (*domain.User, error) {
			return &domain.User{ID: id, PhoneNumber: "+15551230001"}, nil
		}
		router := newUserRouter(userSvc, &domain.User{ID: 1, IsSuperuser: true, IsActive: true})

		req := httptest.NewRequest(http.MethodGet, "/users/42", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		data := decodeBody(t, w)["data"].(map[string]interface{})
		assert.Equal(t, float64(42), data["id"])
	})

	t.Run("not found", func(t *testing.T) {
		router := newUserRouter(mocks.NewMockUserService(), &domain.User{ID: 1, IsSuperuser: true, IsActive: true})

		req := httptest.NewRequest(http.MethodGet, "/users/404", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		router := newUserRouter(mocks.NewMockUserService(), &domain.User{ID: 1, IsSuperuser: true, IsActive: true})

		req := httptest.NewRequest(http.MethodGet, "/users/abc", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateUserHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("partial update", func(t *testing.T) {
		userSvc := mocks.NewMockUserService()
		var gotUpdate domain.UserUpdate
		userSvc.UpdateUserFunc = func(ctx context.Context, id uint, update domain.UserUpdate) (*domain.User, error) {
			gotUpdate = update
			return &domain.User{ID: id, IsActive: false}, nil
		}
		router := newUserRouter(userSvc, &domain.User{ID: 1, IsSuperuser: true, IsActive: true})

		w := performJSON(t, router, http.MethodPatch, "/users/42", map[string]interface{}{"is_active": false})
		require.Equal(t, http.StatusOK, w.Code)

		require.NotNil(t, gotUpdate.IsActive)
		assert.False(t, *gotUpdate.IsActive)
		assert.Nil(t, gotUpdate.Email)
		assert.Nil(t, gotUpdate.IsSuperuser)
	})

	t.Run("not found", func(t *testing.T) {
		router := newUserRouter(mocks.NewMockUserService(), &domain.User{ID: 1, IsSuperuser: true, IsActive: true})

		w := performJSON(t, router, http.MethodPatch, "/users/404", map[string]interface{}{"first_name": "Ada"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteUserHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("deletes", func(t *testing.T) {
		userSvc := mocks.NewMockUserService()
		var deletedID uint
		userSvc.DeleteUserFunc = func(ctx context.Context, id uint) error {
			deletedID = id
			return nil
		}
		router := newUserRouter(userSvc, &domain.User{ID: 1, IsSuperuser: true, IsActive: true})

		req := httptest.NewRequest(http.MethodDelete, "/users/42", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uint(42), deletedID)
	})

	t.Run("not found", func(t *testing.T) {
		userSvc := mocks.NewMockUserService()
		userSvc.DeleteUserFunc = func(ctx context.Context, id uint) error {
			return domain.ErrUserNotFound
		}
		router := newUserRouter(userSvc, &domain.User{ID: 1, IsSuperuser: true, IsActive: true})

		req := httptest.NewRequest(http.MethodDelete, "/users/404", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
