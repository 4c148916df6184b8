package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/cinebook/internal/config"
	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/utils"
)

var authCfg = config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: bcrypt.MinCost}

func TestRegisterCreatesCustomer(t *testing.T) {
	users, tokens := new(mockUsers), new(mockTokens)
	users.On("Create", mock.Anything, "ana@example.com", "longenough", model.RoleCustomer, bcrypt.MinCost).Return(uint64(11), nil)
	tokens.On("StoreRefresh", mock.Anything, uint64(11), mock.AnythingOfType("string"), mock.Anything).Return(nil)

	c, rec := newCtx(http.MethodPost, "/v1/auth/register", `{"email":" Ana@Example.com ","password":"longenough"}`, 0)
	require.NoError(t, NewAuthHandler(authCfg, users, tokens).Register(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	user := body["user"].(map[string]any)
	assert.Equal(t, model.RoleCustomer, user["role"])

	raw := body["access"].(map[string]any)["token"].(string)
	claims, err := utils.ParseAccessToken(authCfg.JWTSecret, raw)
	require.NoError(t, err)
	uid, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint64(11), uid)
	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestRegisterValidation(t *testing.T) {
	for _, body := range []string{
		`{"email":"not-an-email","password":"longenough"}`,
		`{"email":"a@b.c","password":"short"}`,
	} {
		c, rec := newCtx(http.MethodPost, "/v1/auth/register", body, 0)
		require.NoError(t, NewAuthHandler(authCfg, new(mockUsers), new(mockTokens)).Register(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := new(mockUsers)
	users.On("Create", mock.Anything, "a@b.c", "longenough", model.RoleCustomer, bcrypt.MinCost).
		Return(uint64(0), repository.ErrEmailExists)

	c, rec := newCtx(http.MethodPost, "/v1/auth/register", `{"email":"a@b.c","password":"longenough"}`, 0)
	require.NoError(t, NewAuthHandler(authCfg, users, new(mockTokens)).Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin(t *testing.T) {
	hash, err := utils.HashPassword("longenough", bcrypt.MinCost)
	require.NoError(t, err)
	u := model.User{ID: 3, Email: "a@b.c", PasswordHash: hash, Role: model.RoleAdmin, IsActive: true}

	t.Run("ok", func(t *testing.T) {
		users, tokens := new(mockUsers), new(mockTokens)
		users.On("GetByEmail", mock.Anything, "a@b.c").Return(u, nil)
		tokens.On("StoreRefresh", mock.Anything, uint64(3), mock.Anything, mock.Anything).Return(nil)

		c, rec := newCtx(http.MethodPost, "/v1/auth/login", `{"email":"a@b.c","password":"longenough"}`, 0)
		require.NoError(t, NewAuthHandler(authCfg, users, tokens).Login(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(mockUsers)
		users.On("GetByEmail", mock.Anything, "a@b.c").Return(u, nil)

		c, rec := newCtx(http.MethodPost, "/v1/auth/login", `{"email":"a@b.c","password":"incorrect"}`, 0)
		require.NoError(t, NewAuthHandler(authCfg, users, new(mockTokens)).Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := new(mockUsers)
		users.On("GetByEmail", mock.Anything, "x@b.c").Return(model.User{}, repository.ErrUserNotFound)

		c, rec := newCtx(http.MethodPost, "/v1/auth/login", `{"email":"x@b.c","password":"longenough"}`, 0)
		require.NoError(t, NewAuthHandler(authCfg, users, new(mockTokens)).Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRefreshRotatesToken(t *testing.T) {
	users, tokens := new(mockUsers), new(mockTokens)
	hash := utils.HashRefreshRaw("old-token")
	tokens.On("ValidateRefresh", mock.Anything, hash).Return(uint64(3), nil)
	tokens.On("RevokeByHash", mock.Anything, hash).Return(nil)
	tokens.On("StoreRefresh", mock.Anything, uint64(3), mock.Anything, mock.Anything).Return(nil)
	users.On("GetByID", mock.Anything, uint64(3)).Return(model.User{ID: 3, Email: "a@b.c", Role: model.RoleCustomer}, nil)

	c, rec := newCtx(http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"old-token"}`, 0)
	require.NoError(t, NewAuthHandler(authCfg, users, tokens).Refresh(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, "old-token", decode(t, rec)["refresh"].(map[string]any)["token"])
	tokens.AssertExpectations(t)
}

func TestLogoutIsNoContent(t *testing.T) {
	tokens := new(mockTokens)
	tokens.On("RevokeByHash", mock.Anything, utils.HashRefreshRaw("tok")).Return(nil)

	c, rec := newCtx(http.MethodPost, "/v1/auth/logout", `{"refresh_token":"tok"}`, 0)
	require.NoError(t, NewAuthHandler(authCfg, new(mockUsers), tokens).Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCreateRoomValidation(t *testing.T) {
	for _, body := range []string{
		`{"name":"Salle 1","capacity":0}`,
		`{"name":"","capacity":50}`,
		`{"name":"Salle 1","capacity":50,"type":"4DX"}`,
	} {
		c, rec := newCtx(http.MethodPost, "/v1/admin/rooms", body, 1)
		require.NoError(t, NewAdminHandler(nil, new(mockRooms), nil, nil, nil).CreateRoom(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestCreateRoom(t *testing.T) {
	rooms := new(mockRooms)
	rooms.On("Create", mock.Anything, mock.MatchedBy(func(r *model.Room) bool {
		return r.Name == "Salle 1" && r.Capacity == 50 && r.Type == "IMAX"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Room).ID = 4
	}).Return(nil)

	c, rec := newCtx(http.MethodPost, "/v1/admin/rooms", `{"name":" Salle 1 ","capacity":50,"type":"imax"}`, 1)
	require.NoError(t, NewAdminHandler(nil, rooms, nil, nil, nil).CreateRoom(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 4.0, decode(t, rec)["id"])
}

func TestCreateRoomDuplicateName(t *testing.T) {
	rooms := new(mockRooms)
	rooms.On("Create", mock.Anything, mock.Anything).Return(repository.ErrRoomNameExists)

	c, rec := newCtx(http.MethodPost, "/v1/admin/rooms", `{"name":"Salle 1","capacity":50}`, 1)
	require.NoError(t, NewAdminHandler(nil, rooms, nil, nil, nil).CreateRoom(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateProfile(t *testing.T) {
	hash, err := utils.HashPassword("longenough", bcrypt.MinCost)
	require.NoError(t, err)
	me := model.User{ID: 5, Email: "ana@example.com", PasswordHash: hash, Role: model.RoleCustomer, IsActive: true}

	patch := func(users *mockUsers, tokens *mockTokens, body string) (int, map[string]any) {
		c, rec := newCtx(http.MethodPatch, "/v1/me", body, 5)
		require.NoError(t, NewAuthHandler(authCfg, users, tokens).UpdateProfile(c))
		if rec.Code != http.StatusOK {
			return rec.Code, nil
		}
		return rec.Code, decode(t, rec)
	}

	t.Run("email", func(t *testing.T) {
		users, tokens := new(mockUsers), new(mockTokens)
		users.On("GetByID", mock.Anything, uint64(5)).Return(me, nil)
		users.On("UpdateEmail", mock.Anything, uint64(5), "ana.new@example.com").Return(nil)

		code, body := patch(users, tokens, `{"email":" Ana.New@Example.com ","current_password":"longenough"}`)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ana.new@example.com", body["email"])
		tokens.AssertNotCalled(t, "RevokeAllForUser", mock.Anything, mock.Anything)
	})

	t.Run("password ends sessions", func(t *testing.T) {
		users, tokens := new(mockUsers), new(mockTokens)
		users.On("GetByID", mock.Anything, uint64(5)).Return(me, nil)
		users.On("UpdatePassword", mock.Anything, uint64(5), "even-longer", bcrypt.MinCost).Return(nil)
		tokens.On("RevokeAllForUser", mock.Anything, uint64(5)).Return(nil)

		code, _ := patch(users, tokens, `{"current_password":"longenough","new_password":"even-longer"}`)
		assert.Equal(t, http.StatusOK, code)
		users.AssertExpectations(t)
		tokens.AssertExpectations(t)
	})

	t.Run("wrong current password", func(t *testing.T) {
		users := new(mockUsers)
		users.On("GetByID", mock.Anything, uint64(5)).Return(me, nil)

		code, _ := patch(users, new(mockTokens), `{"current_password":"guess-again","new_password":"even-longer"}`)
		assert.Equal(t, http.StatusUnauthorized, code)
		users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("email taken", func(t *testing.T) {
		users := new(mockUsers)
		users.On("GetByID", mock.Anything, uint64(5)).Return(me, nil)
		users.On("UpdateEmail", mock.Anything, uint64(5), "taken@example.com").Return(repository.ErrEmailExists)

		code, _ := patch(users, new(mockTokens), `{"email":"taken@example.com","current_password":"longenough"}`)
		assert.Equal(t, http.StatusConflict, code)
	})

	t.Run("rejected input", func(t *testing.T) {
		for _, body := range []string{
			`{"current_password":"longenough"}`,
			`{"email":"nope","current_password":"longenough"}`,
			`{"current_password":"longenough","new_password":"short"}`,
		} {
			code, _ := patch(new(mockUsers), new(mockTokens), body)
			assert.Equal(t, http.StatusBadRequest, code, body)
		}
	})
}
