package webapi_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/amirasaad/iebank/infra/repository/memory"
	"github.com/amirasaad/iebank/pkg/app"
	"github.com/amirasaad/iebank/webapi"
	"github.com/amirasaad/iebank/webapi/common"
	"github.com/amirasaad/iebank/webapi/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

type BankE2ETestSuite struct {
	testutils.E2ETestSuite
}

func TestBankE2ETestSuite(t *testing.T) {
	suite.Run(t, new(BankE2ETestSuite))
}

func (s *BankE2ETestSuite) TestHealth() {
	resp := s.MakeRequest(http.MethodGet, "/", "", "")
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	s.Contains(string(body), "IE Bank API is running")
}

func (s *BankE2ETestSuite) TestLogin() {
	user := s.CreateTestUser()

	s.Run("by email", func() {
		body := fmt.Sprintf(`{"email":%q,"password":%q}`, user.Email, testutils.DefaultPassword)
		resp := s.MakeRequest(http.MethodPost, "/login", body, "")
		s.Equal(http.StatusOK, resp.StatusCode)
		var data struct {
			Token   string `json:"token"`
			IsAdmin bool   `json:"is_admin"`
		}
		s.Decode(resp, &data)
		s.NotEmpty(data.Token)
		s.False(data.IsAdmin)
	})

	s.Run("wrong password", func() {
		body := fmt.Sprintf(`{"identity":%q,"password":"nope-nope"}`, user.Username)
		resp := s.MakeRequest(http.MethodPost, "/login", body, "")
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	s.Run("unknown user", func() {
		resp := s.MakeRequest(http.MethodPost, "/login", `{"identity":"ghost","password":"whatever"}`, "")
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	s.Run("missing identity", func() {
		resp := s.MakeRequest(http.MethodPost, "/login", `{"password":"whatever"}`, "")
		s.Equal(http.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func (s *BankE2ETestSuite) TestCurrentUserHidesPassword() {
	user := s.CreateTestUser()
	resp := s.MakeRequest(http.MethodGet, "/get_current_user", "", user.Token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var data map[string]any
	s.Decode(resp, &data)
	s.Equal(user.Username, data["username"])
	s.NotContains(data, "password")
}

func (s *BankE2ETestSuite) TestRequiresToken() {
	for _, path := range []string{"/accounts", "/transactions", "/get_current_user", "/users"} {
		resp := s.MakeRequest(http.MethodGet, path, "", "")
		s.Equal(http.StatusUnauthorized, resp.StatusCode, path)
		_ = resp.Body.Close()
	}
	resp := s.MakeRequest(http.MethodGet, "/accounts", "", "not-a-token")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *BankE2ETestSuite) TestAccountLifecycle() {
	user := s.CreateTestUser()
	acc := s.CreateAccount(user.Token, "")

	s.Equal("USD", acc.Currency)
	s.Equal("active", acc.Status)
	s.Equal("0.00", acc.Balance.String())
	s.Len(acc.AccountNumber, 20)
	s.Equal(user.ID.String(), acc.UserID)
	_, err := time.Parse(common.TimeLayout, acc.CreatedAt)
	s.NoError(err)

	resp := s.MakeRequest(http.MethodPut, "/accounts/"+acc.ID, `{"name":"Savings","status":"inactive"}`, user.Token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var updated testutils.AccountData
	s.Decode(resp, &updated)
	s.Equal("Savings", updated.Name)
	s.Equal("inactive", updated.Status)

	resp = s.MakeRequest(http.MethodPut, "/accounts/"+acc.ID, `{"status":"frozen"}`, user.Token)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(http.MethodGet, "/accounts", "", user.Token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var list struct {
		Accounts []testutils.AccountData `json:"accounts"`
	}
	s.Decode(resp, &list)
	s.Len(list.Accounts, 1)

	resp = s.MakeRequest(http.MethodDelete, "/accounts/"+acc.ID, "", user.Token)
	s.Equal(http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(http.MethodGet, "/accounts/"+acc.ID, "", user.Token)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *BankE2ETestSuite) TestAccountAccessControl() {
	owner := s.CreateTestUser()
	other := s.CreateTestUser()
	acc := s.CreateAccount(owner.Token, "EUR")

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		resp := s.MakeRequest(method, "/accounts/"+acc.ID, "", other.Token)
		s.Equal(http.StatusForbidden, resp.StatusCode, method)
		_ = resp.Body.Close()
	}

	resp := s.MakeRequest(http.MethodGet, "/accounts/"+acc.ID, "", s.Admin.Token)
	s.Equal(http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(http.MethodGet, "/accounts/not-a-uuid", "", owner.Token)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(http.MethodGet, "/accounts/"+uuid.NewString(), "", owner.Token)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *BankE2ETestSuite) TestDeleteFundedAccountRejected() {
	user := s.CreateTestUser()
	acc := s.CreateAccount(user.Token, "USD")
	s.Fund(acc.AccountNumber, "10")

	resp := s.MakeRequest(http.MethodDelete, "/accounts/"+acc.ID, "", user.Token)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *BankE2ETestSuite) TestAddMoneyAdminOnly() {
	user := s.CreateTestUser()
	acc := s.CreateAccount(user.Token, "USD")

	resp := s.MakeRequest(http.MethodPost, "/add_money",
		fmt.Sprintf(`{"account_number":%q,"amount":5}`, acc.AccountNumber), user.Token)
	s.Equal(http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	s.Fund(acc.AccountNumber, "25.5")
	s.Equal("25.50", s.GetAccount(acc.ID).Balance.String())
}

func (s *BankE2ETestSuite) TestTransfer() {
	alice := s.CreateTestUser()
	bob := s.CreateTestUser()
	from := s.CreateAccount(alice.Token, "USD")
	to := s.CreateAccount(bob.Token, "USD")
	s.Fund(from.AccountNumber, "100")

	transfer := func(token, sender, receiver, amount string) *http.Response {
		body := fmt.Sprintf(`{"sender_account_id":%q,"receiver_account_number":%q,"amount":%s}`, sender, receiver, amount)
		return s.MakeRequest(http.MethodPost, "/transfer", body, token)
	}

	s.Run("success", func() {
		resp := transfer(alice.Token, from.ID, to.AccountNumber, "40")
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		var tx struct {
			AccountID            *string `json:"account_id"`
			DestinationAccountID string  `json:"destination_account_id"`
			CreatedAt            string  `json:"created_at"`
		}
		s.Decode(resp, &tx)
		s.Require().NotNil(tx.AccountID)
		s.Equal(from.ID, *tx.AccountID)
		s.Equal(to.ID, tx.DestinationAccountID)
		_, err := time.Parse(common.TimeLayout, tx.CreatedAt)
		s.NoError(err)

		s.Equal("60.00", s.GetAccount(from.ID).Balance.String())
		s.Equal("40.00", s.GetAccount(to.ID).Balance.String())
	})

	s.Run("insufficient funds", func() {
		resp := transfer(alice.Token, from.ID, to.AccountNumber, "1000")
		s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
		pd := s.DecodeProblem(resp)
		s.False(pd.Success)
		s.Equal("60.00", s.GetAccount(from.ID).Balance.String())
	})

	s.Run("unknown receiver", func() {
		resp := transfer(alice.Token, from.ID, "99999999999999999999", "1")
		s.Equal(http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
	})

	s.Run("not the owner", func() {
		resp := transfer(bob.Token, from.ID, to.AccountNumber, "1")
		s.Equal(http.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()
	})

	s.Run("non-positive amount", func() {
		resp := transfer(alice.Token, from.ID, to.AccountNumber, "0")
		s.Equal(http.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	})

	s.Run("string amount", func() {
		resp := transfer(alice.Token, from.ID, to.AccountNumber, `"0.50"`)
		s.Equal(http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	s.Run("transactions", func() {
		resp := s.MakeRequest(http.MethodGet, "/accounts/"+from.ID+"/transactions", "", alice.Token)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		var data struct {
			Transactions []map[string]any `json:"transactions"`
		}
		s.Decode(resp, &data)
		// funding deposit plus two transfers
		s.Len(data.Transactions, 3)

		resp = s.MakeRequest(http.MethodGet, "/accounts/"+from.ID+"/transactions", "", bob.Token)
		s.Equal(http.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()

		resp = s.MakeRequest(http.MethodGet, "/transactions", "", bob.Token)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		s.Decode(resp, &data)
		s.Len(data.Transactions, 2)
	})
}

func (s *BankE2ETestSuite) TestUserAdministration() {
	user := s.CreateTestUser()

	resp := s.MakeRequest(http.MethodGet, "/users", "", user.Token)
	s.Equal(http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(http.MethodPost, "/user/register",
		`{"username":"carol","email":"carol@example.com","password":"password123"}`, s.Admin.Token)
	s.Equal(http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(http.MethodPost, "/users",
		`{"username":"carol","email":"carol2@example.com","password":"password123"}`, s.Admin.Token)
	s.Equal(http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(http.MethodPut, "/users/"+user.ID.String(), `{"admin":true}`, s.Admin.Token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var updated map[string]any
	s.Decode(resp, &updated)
	s.Equal(true, updated["admin"])

	s.CreateAccount(user.Token, "USD")
	resp = s.MakeRequest(http.MethodDelete, "/users/"+user.ID.String(), "", s.Admin.Token)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *BankE2ETestSuite) TestDemotedAdminLosesAccess() {
	user := s.CreateTestUser()
	resp := s.MakeRequest(http.MethodPut, "/users/"+user.ID.String(), `{"admin":true}`, s.Admin.Token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	promotedToken := s.LoginUser(user.Username)
	acc := s.CreateAccount(promotedToken, "USD")

	resp = s.MakeRequest(http.MethodGet, "/users", "", promotedToken)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(http.MethodPut, "/users/"+user.ID.String(), `{"admin":false}`, s.Admin.Token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(http.MethodGet, "/users", "", promotedToken)
	s.Equal(http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(http.MethodPost, "/add_money",
		fmt.Sprintf(`{"account_number":%q,"amount":1000}`, acc.AccountNumber), promotedToken)
	s.Equal(http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()
	s.Equal("0.00", s.GetAccount(acc.ID).Balance.String())
}

func (s *BankE2ETestSuite) TestDeletedUserTokenRejected() {
	user := s.CreateTestUser()

	resp := s.MakeRequest(http.MethodDelete, "/users/"+user.ID.String(), "", s.Admin.Token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(http.MethodPost, "/accounts", `{"name":"Ghost","currency":"USD"}`, user.Token)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(http.MethodGet, "/get_current_user", "", user.Token)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *BankE2ETestSuite) TestTransferRejectsHugeExponent() {
	user := s.CreateTestUser()
	from := s.CreateAccount(user.Token, "USD")
	to := s.CreateAccount(user.Token, "USD")
	s.Fund(from.AccountNumber, "10")

	for _, amount := range []string{"1e99999999", `"1e-99999999"`} {
		body := fmt.Sprintf(`{"sender_account_id":%q,"receiver_account_number":%q,"amount":%s}`,
			from.ID, to.AccountNumber, amount)
		start := time.Now()
		resp := s.MakeRequest(http.MethodPost, "/transfer", body, user.Token)
		s.Equal(http.StatusBadRequest, resp.StatusCode, amount)
		s.Less(time.Since(start), 2*time.Second, amount)
		_ = resp.Body.Close()
	}
	s.Equal("10.00", s.GetAccount(from.ID).Balance.String())
}

func (s *BankE2ETestSuite) TestLogoutKeepsTokenValid() {
	user := s.CreateTestUser()
	resp := s.MakeRequest(http.MethodPost, "/logout", "", user.Token)
	s.Equal(http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestRateLimit(t *testing.T) {
	cfg := testutils.TestConfig()
	cfg.RateLimit.MaxRequests = 2
	a := app.New(&app.Deps{Uow: memory.NewUoW(memory.NewStore()), Logger: slog.Default()}, cfg)
	require.NoError(t, a.Bootstrap(context.Background()))
	fiberApp := webapi.SetupApp(a)

	status := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip)
		resp, err := fiberApp.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close() //nolint:errcheck
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, status("10.0.0.1"))
	assert.Equal(t, http.StatusOK, status("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, status("10.0.0.1"))
	assert.Equal(t, http.StatusOK, status("10.0.0.2, 10.0.0.1"))
}
