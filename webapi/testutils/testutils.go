// Package testutils provides an end-to-end suite running the full HTTP stack
// over the in-memory store.
package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/amirasaad/iebank/infra/repository/memory"
	"github.com/amirasaad/iebank/pkg/app"
	"github.com/amirasaad/iebank/pkg/config"
	"github.com/amirasaad/iebank/webapi"
	"github.com/amirasaad/iebank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// DefaultPassword is the password of every user created through the suite.
const DefaultPassword = "password123"

// TestUser is a user created through the API along with its token.
type TestUser struct {
	ID       uuid.UUID
	Username string
	Email    string
	Token    string
}

// E2ETestSuite provides a test suite wired exactly like the server, backed by
// a fresh memory store per test.
type E2ETestSuite struct {
	suite.Suite
	App   *app.App
	Fiber *fiber.App
	Cfg   *config.App
	Admin *TestUser
}

// TestConfig returns a configuration suitable for in-process tests.
func TestConfig() *config.App {
	return &config.App{
		Env:       "test",
		Server:    &config.Server{RequestTimeout: 5 * time.Second},
		Log:       &config.Log{},
		DB:        &config.DB{Driver: "memory"},
		Auth:      &config.Auth{Jwt: &config.Jwt{Secret: "e2e-secret", Expiry: time.Hour}},
		RateLimit: &config.RateLimit{MaxRequests: 10000, Window: time.Minute},
		Bootstrap: &config.Bootstrap{
			AdminUsername: "admin",
			AdminEmail:    "admin@example.com",
			AdminPassword: DefaultPassword,
		},
	}
}

// SetupTest builds a new application and logs in the bootstrap admin.
func (s *E2ETestSuite) SetupTest() {
	s.Cfg = TestConfig()
	deps := &app.Deps{
		Uow:    memory.NewUoW(memory.NewStore()),
		Logger: slog.Default(),
	}
	s.App = app.New(deps, s.Cfg)
	s.Require().NoError(s.App.Bootstrap(context.Background()))
	s.Fiber = webapi.SetupApp(s.App)

	admin, _, err := s.App.UserService.EnsureAdmin(context.Background(), "admin", "admin@example.com", DefaultPassword)
	s.Require().NoError(err)
	s.Admin = &TestUser{
		ID:       admin.ID,
		Username: admin.Username,
		Email:    admin.Email,
		Token:    s.LoginUser(admin.Username),
	}
}

// MakeRequest is a helper for making HTTP requests in tests
func (s *E2ETestSuite) MakeRequest(method, path, body, token string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.Fiber.Test(req, -1)
	s.Require().NoError(err)
	return resp
}

// Decode reads a success envelope into a Response whose Data is decoded into data.
func (s *E2ETestSuite) Decode(resp *http.Response, data any) common.Response {
	defer resp.Body.Close() //nolint:errcheck
	var raw struct {
		common.Response
		Data json.RawMessage `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&raw))
	if data != nil && len(raw.Data) > 0 {
		s.Require().NoError(json.Unmarshal(raw.Data, data))
	}
	return raw.Response
}

// DecodeProblem reads a problem details body.
func (s *E2ETestSuite) DecodeProblem(resp *http.Response) common.ProblemDetails {
	defer resp.Body.Close() //nolint:errcheck
	var pd common.ProblemDetails
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&pd))
	return pd
}

// LoginUser makes an actual HTTP request to login and returns the JWT token
func (s *E2ETestSuite) LoginUser(identity string) string {
	body := fmt.Sprintf(`{"identity":%q,"password":%q}`, identity, DefaultPassword)
	resp := s.MakeRequest(http.MethodPost, "/login", body, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var data struct {
		Token string `json:"token"`
	}
	s.Decode(resp, &data)
	s.Require().NotEmpty(data.Token, "no token found in response")
	return data.Token
}

// CreateTestUser creates a unique user through POST /users as the admin and logs it in.
func (s *E2ETestSuite) CreateTestUser() *TestUser {
	suffix := uuid.New().String()[:8]
	username := "testuser_" + suffix
	email := "test_" + suffix + "@example.com"
	body := fmt.Sprintf(`{"username":%q,"email":%q,"password":%q}`, username, email, DefaultPassword)
	resp := s.MakeRequest(http.MethodPost, "/users", body, s.Admin.Token)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var data struct {
		ID string `json:"id"`
	}
	s.Decode(resp, &data)
	return &TestUser{
		ID:       uuid.MustParse(data.ID),
		Username: username,
		Email:    email,
		Token:    s.LoginUser(username),
	}
}

// AccountData is the decoded account payload.
type AccountData struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	AccountNumber string      `json:"account_number"`
	Balance       json.Number `json:"balance"`
	Currency      string      `json:"currency"`
	Status        string      `json:"status"`
	CreatedAt     string      `json:"created_at"`
	UserID        string      `json:"user_id"`
}

// CreateAccount opens an account for the token's user.
func (s *E2ETestSuite) CreateAccount(token, currency string) AccountData {
	body := fmt.Sprintf(`{"name":"Main","currency":%q,"country":"ES"}`, currency)
	resp := s.MakeRequest(http.MethodPost, "/accounts", body, token)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var acc AccountData
	s.Decode(resp, &acc)
	return acc
}

// Fund credits an account as the admin.
func (s *E2ETestSuite) Fund(accountNumber, amount string) {
	body := fmt.Sprintf(`{"account_number":%q,"amount":%s}`, accountNumber, amount)
	resp := s.MakeRequest(http.MethodPost, "/add_money", body, s.Admin.Token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

// GetAccount fetches an account as the admin.
func (s *E2ETestSuite) GetAccount(id string) AccountData {
	resp := s.MakeRequest(http.MethodGet, "/accounts/"+id, "", s.Admin.Token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var acc AccountData
	s.Decode(resp, &acc)
	return acc
}
