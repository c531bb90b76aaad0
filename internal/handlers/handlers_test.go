package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/expense_tracker_bot/internal/apperrors"
	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
	portssvc "github.com/SscSPs/expense_tracker_bot/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker_bot/internal/dto"
	"github.com/SscSPs/expense_tracker_bot/internal/handlers"
	"github.com/SscSPs/expense_tracker_bot/internal/platform/config"
)

// --- Test Suite ---
type HandlersTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockRates   *MockExchangeRateService
	mockBalance *MockBalanceService
	jwtSecret   string
	token       string
}

func (suite *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.jwtSecret = "test-secret-for-handlers"
	suite.mockRates = new(MockExchangeRateService)
	suite.mockBalance = new(MockBalanceService)

	services := &portssvc.ServiceContainer{
		ExchangeRate: suite.mockRates,
		Balance:      suite.mockBalance,
	}
	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, &config.Config{JWTSecret: suite.jwtSecret}, services, nil, prometheus.NewRegistry())
	suite.token = suite.generateTestToken("chat-bot")
}

// generateTestToken creates a dummy JWT for testing.
func (suite *HandlersTestSuite) generateTestToken(clientID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "expense-tracker-test",
		Subject:   clientID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *HandlersTestSuite) do(method, target string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, target, nil)
	req.Header.Set("Authorization", "Bearer "+suite.token)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) TestHealthIsPublic() {
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *HandlersTestSuite) TestMetricsEndpoint() {
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestAPIRequiresToken() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/rates", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockRates.AssertNotCalled(suite.T(), "ListRates", mock.Anything)
}

func (suite *HandlersTestSuite) TestListRates_Success() {
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	suite.mockRates.On("ListRates", mock.Anything).Return([]domain.ExchangeRate{
		{FromCurrencyCode: "EUR", ToCurrencyCode: "USD", Rate: decimal.RequireFromString("1.1"), LastUpdated: updated},
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/rates")

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.ExchangeRateResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp, 1)
	suite.Equal("EUR", resp[0].FromCurrencyCode)
	suite.True(resp[0].Rate.Equal(decimal.RequireFromString("1.1")))
	suite.True(resp[0].LastUpdated.Equal(updated))
}

func (suite *HandlersTestSuite) TestListRates_StorageFailure() {
	suite.mockRates.On("ListRates", mock.Anything).
		Return(nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to list exchange rates", fmt.Errorf("connection refused"))).Once()

	w := suite.do(http.MethodGet, "/api/v1/rates")

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.NotContains(w.Body.String(), "connection refused")
}

func (suite *HandlersTestSuite) TestGetRate_Success() {
	suite.mockRates.On("ResolveRate", mock.Anything, "USD", "EUR").Return(domain.RateQuote{
		Pair:   domain.CurrencyPair{From: "USD", To: "EUR"},
		Rate:   decimal.RequireFromString("0.9"),
		Source: domain.SourceProvider,
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/rates/USD/EUR")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.RateQuoteResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("provider", resp.Source)
	suite.True(resp.Rate.Equal(decimal.RequireFromString("0.9")))
	suite.Nil(resp.LastUpdated)
}

func (suite *HandlersTestSuite) TestGetRate_UnsupportedCurrency() {
	suite.mockRates.On("ResolveRate", mock.Anything, "USD", "GBP").
		Return(domain.RateQuote{}, fmt.Errorf("%w: GBP", apperrors.ErrUnsupportedCurrency)).Once()

	w := suite.do(http.MethodGet, "/api/v1/rates/USD/GBP")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "GBP")
}

func (suite *HandlersTestSuite) TestConvert_Success() {
	amount := decimal.RequireFromString("10.5")
	suite.mockRates.On("ResolveRate", mock.Anything, "USD", "UAH").Return(domain.RateQuote{
		Pair:   domain.CurrencyPair{From: "USD", To: "UAH"},
		Rate:   decimal.NewFromInt(40),
		Source: domain.SourceStore,
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/convert?amount=10.5&from=USD&to=UAH")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ConvertResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Converted.Equal(decimal.NewFromInt(420)))
	suite.True(resp.Rate.Equal(decimal.NewFromInt(40)))
	suite.True(resp.Amount.Equal(amount))
	suite.Equal("store", resp.Source)
	suite.mockRates.AssertExpectations(suite.T())
	suite.mockRates.AssertNotCalled(suite.T(), "GetRate", mock.Anything, mock.Anything, mock.Anything)
	suite.mockRates.AssertNotCalled(suite.T(), "Convert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestConvert_IdentityKeepsAmount() {
	suite.mockRates.On("ResolveRate", mock.Anything, "eur", "EUR").Return(domain.RateQuote{
		Pair:   domain.CurrencyPair{From: "EUR", To: "EUR"},
		Rate:   decimal.NewFromInt(1),
		Source: domain.SourceIdentity,
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/convert?amount=0.333333333333333333333&from=eur&to=EUR")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ConvertResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("0.333333333333333333333", resp.Converted.String())
}

func (suite *HandlersTestSuite) TestConvert_UnsupportedCurrency() {
	suite.mockRates.On("ResolveRate", mock.Anything, "USD", "GBP").
		Return(domain.RateQuote{}, fmt.Errorf("%w: GBP", apperrors.ErrUnsupportedCurrency)).Once()

	w := suite.do(http.MethodGet, "/api/v1/convert?amount=1&from=USD&to=GBP")

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestConvert_InvalidInput() {
	tests := []struct {
		name  string
		query string
	}{
		{"missing amount", "from=USD&to=EUR"},
		{"bad amount", "amount=ten&from=USD&to=EUR"},
		{"bad currency shape", "amount=1&from=US1&to=EUR"},
		{"missing to", "amount=1&from=USD"},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := suite.do(http.MethodGet, "/api/v1/convert?"+tt.query)
			suite.Equal(http.StatusBadRequest, w.Code)
		})
	}
	suite.mockRates.AssertNotCalled(suite.T(), "ResolveRate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestRefresh_ReportsFailures() {
	suite.mockRates.On("RefreshAll", mock.Anything).Return(domain.RefreshReport{
		Attempted: 2,
		Succeeded: 1,
		Failed:    []domain.CurrencyPair{{From: "EUR", To: "BTC"}},
		Duration:  1500 * time.Millisecond,
	}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/rates/refresh")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.RefreshResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(2, resp.Attempted)
	suite.Equal([]string{"EUR->BTC"}, resp.Failed)
	suite.Equal(int64(1500), resp.DurationMS)
}

func (suite *HandlersTestSuite) TestInvalidateCache() {
	suite.mockRates.On("Invalidate").Return().Once()

	w := suite.do(http.MethodDelete, "/api/v1/rates/cache")

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockRates.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestGetBalance_Success() {
	balance := domain.NewEmptyBalance("USD")
	balance.TotalIncome = decimal.NewFromInt(100)
	balance.TotalExpenses = decimal.RequireFromString("1.25")
	balance.Balance = decimal.RequireFromString("98.75")
	balance.CurrencyBreakdown["USD"] = domain.CurrencyBalance{Income: decimal.NewFromInt(100), TransactionCount: 1}
	balance.CurrencyBreakdown["UAH"] = domain.CurrencyBalance{Expenses: decimal.NewFromInt(50), TransactionCount: 1}
	suite.mockBalance.On("GetBalance", mock.Anything, "owner-1", "USD").Return(&balance, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/owners/owner-1/balance?base=USD")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.BalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("owner-1", resp.OwnerID)
	suite.True(resp.Balance.Equal(decimal.RequireFromString("98.75")))
	suite.Require().Len(resp.CurrencyBreakdown, 2)
	suite.Equal("UAH", resp.CurrencyBreakdown[0].CurrencyCode)
}

func (suite *HandlersTestSuite) TestGetBalance_DefaultsBaseToEmpty() {
	balance := domain.NewEmptyBalance("EUR")
	suite.mockBalance.On("GetBalance", mock.Anything, "owner-2", "").Return(&balance, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/owners/owner-2/balance")

	suite.Equal(http.StatusOK, w.Code)
	suite.mockBalance.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestGetBalance_ValidationError() {
	suite.mockBalance.On("GetBalance", mock.Anything, "owner-1", "GBP").
		Return(nil, apperrors.NewValidationError("unsupported base currency GBP")).Once()

	w := suite.do(http.MethodGet, "/api/v1/owners/owner-1/balance?base=GBP")

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestGetBalanceSummary() {
	suite.mockBalance.On("FormatBalanceSummary", mock.Anything, "owner-1", "", "ru").
		Return("💰 **Баланс**: $ 1.00\n", nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/owners/owner-1/balance/summary?lang=ru")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.BalanceSummaryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Contains(resp.Text, "Баланс")
}

func (suite *HandlersTestSuite) TestGetBalanceSummary_PassesLanguageThrough() {
	suite.mockBalance.On("FormatBalanceSummary", mock.Anything, "owner-1", "EUR", "de-CH").
		Return("💰 **Balance**: € 0.00\n", nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/owners/owner-1/balance/summary?base=EUR&lang=de-CH")

	suite.Equal(http.StatusOK, w.Code)
	suite.mockBalance.AssertExpectations(suite.T())
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
