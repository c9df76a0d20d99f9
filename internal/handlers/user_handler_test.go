package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"wfmuser/internal/handlers"
	"wfmuser/internal/models"
	"wfmuser/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockDirectory is a mock implementation of services.Directory
type MockDirectory struct {
	services.Directory
	mock.Mock
}

func (m *MockDirectory) Create(candidate models.NewUser) (models.User, error) {
	args := m.Called(candidate)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockDirectory) ByUsername(username string) (models.User, error) {
	args := m.Called(username)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockDirectory) VerifyPassword(username, password string) (bool, error) {
	args := m.Called(username, password)
	return args.Bool(0), args.Error(1)
}

func TestUserHandler_HashingFailureIs500(t *testing.T) {
	users := new(MockDirectory)
	users.On("Create", mock.AnythingOfType("models.NewUser")).
		Return(models.User{}, fmt.Errorf("%w: boom", services.ErrHashing)).Once()

	app := fiber.New()
	handlers.NewUserHandler(users).RegisterRoutes(app.Group(apiPath))

	resp, body := doJSON(t, app, http.MethodPost, apiPath+"/", map[string]interface{}{
		"user": map[string]string{"username": "jdoe", "password": "Password1"},
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Could not process user request", body["message"])
	users.AssertExpectations(t)
}

func TestAuthHandler_HashingFailureIs500(t *testing.T) {
	users := new(MockDirectory)
	users.On("ByUsername", "daisy").Return(models.User{ID: daisyID, Username: "daisy"}, nil).Once()
	users.On("VerifyPassword", "daisy", "Password1").Return(false, services.ErrHashing).Once()

	app := fiber.New()
	handlers.NewAuthHandler(services.NewAuthService(users, nil)).RegisterRoutes(app.Group(apiPath))

	resp, _ := doJSON(t, app, http.MethodPost, apiPath+"/auth", map[string]string{
		"username": "daisy",
		"password": "Password1",
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	users.AssertExpectations(t)
}
