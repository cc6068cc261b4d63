package wallet

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/services/ledger"
	"github.com/Macwinner1/Xecret/store"
	"github.com/Macwinner1/Xecret/testutils"
)

const secret = "s3cret"

func TestMain(m *testing.M) {
	testutils.InitTestMain()
	os.Exit(m.Run())
}

func setup(t *testing.T) (*gin.Engine, *gin.Engine) {
	t.Helper()
	repo := store.NewMemoryStore()
	h := New(ledger.New(repo, ledger.Options{
		FeeRate:         decimal.NewFromFloat(0.1),
		SettlementDelay: time.Hour,
	}), secret)

	routes := func(as models.User) *gin.Engine {
		r := testutils.SetupTestRouter()
		r.POST("/wallet/settlements/:id", h.Settle)
		g := r.Group("/wallet", testutils.AsUser(as))
		g.GET("/balance", h.Balance)
		g.POST("/deposit", h.Deposit)
		g.POST("/withdraw", h.Withdraw)
		g.GET("/withdrawals", h.Withdrawals)
		g.POST("/cancel-withdrawal", h.CancelWithdrawal)
		g.GET("/transactions", h.Transactions)
		return r
	}
	return routes(models.User{ID: "u1"}), routes(models.User{ID: "u2"})
}

func decode(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestBalanceStartsEmpty(t *testing.T) {
	r, _ := setup(t)
	w := testutils.Do(r, http.MethodGet, "/wallet/balance", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"balance":0,"pending_balance":0}`, w.Body.String())
}

func TestDepositWithdrawCancel(t *testing.T) {
	r, other := setup(t)

	w := testutils.Do(r, http.MethodPost, "/wallet/deposit", `{"amount":100,"payment_method":"credit_card"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w.Body.Bytes())
	assert.Equal(t, float64(100), resp["new_balance"])
	assert.Equal(t, "Successfully deposited 100 SUI", resp["message"])

	w = testutils.Do(r, http.MethodPost, "/wallet/withdraw", `{"amount":40,"withdrawal_method":"crypto","crypto_address":"0xdead"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp = decode(t, w.Body.Bytes())
	assert.Equal(t, float64(60), resp["new_balance"])
	assert.Equal(t, float64(40), resp["pending_balance"])
	id := resp["withdrawal_id"].(string)

	w = testutils.Do(other, http.MethodPost, "/wallet/cancel-withdrawal", `{"withdrawal_id":"`+id+`"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutils.Do(r, http.MethodPost, "/wallet/cancel-withdrawal", `{"withdrawal_id":"`+id+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w.Body.Bytes())
	assert.Equal(t, float64(100), resp["new_balance"])
	assert.Equal(t, float64(0), resp["pending_balance"])

	w = testutils.Do(r, http.MethodPost, "/wallet/cancel-withdrawal", `{"withdrawal_id":"`+id+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Can only cancel pending withdrawals"}`, w.Body.String())

	w = testutils.Do(r, http.MethodPost, "/wallet/settlements/"+id, "", SettlementSecretHeader, secret)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutils.Do(r, http.MethodGet, "/wallet/transactions", "")
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Transactions []models.Transaction `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history.Transactions, 2)
}

func TestWithdrawValidation(t *testing.T) {
	r, _ := setup(t)
	testutils.Do(r, http.MethodPost, "/wallet/deposit", `{"amount":10,"payment_method":"crypto"}`)

	tests := []struct {
		name  string
		body  string
		error string
	}{
		{"zero", `{"amount":0,"withdrawal_method":"bank","bank_details":"x"}`, "Invalid amount"},
		{"method", `{"amount":1,"withdrawal_method":"paypal"}`, "Invalid withdrawal method"},
		{"crypto address", `{"amount":1,"withdrawal_method":"crypto"}`, "Crypto address required"},
		{"bank details", `{"amount":1,"withdrawal_method":"bank"}`, "Bank details required"},
		{"too much", `{"amount":11,"withdrawal_method":"bank","bank_details":"x"}`, "Insufficient balance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutils.Do(r, http.MethodPost, "/wallet/withdraw", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.error+`"}`, w.Body.String())
		})
	}

	w := testutils.Do(r, http.MethodPost, "/wallet/deposit", `{"amount":5,"payment_method":"cash"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid payment method"}`, w.Body.String())
}

func TestSettlementCallback(t *testing.T) {
	r, _ := setup(t)
	testutils.Do(r, http.MethodPost, "/wallet/deposit", `{"amount":10,"payment_method":"crypto"}`)
	w := testutils.Do(r, http.MethodPost, "/wallet/withdraw", `{"amount":10,"withdrawal_method":"bank","bank_details":"FR76"}`)
	require.Equal(t, http.StatusOK, w.Code)
	id := decode(t, w.Body.Bytes())["withdrawal_id"].(string)

	w = testutils.Do(r, http.MethodPost, "/wallet/settlements/"+id, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutils.Do(r, http.MethodPost, "/wallet/settlements/"+id, "", SettlementSecretHeader, "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutils.Do(r, http.MethodPost, "/wallet/settlements/missing", "", SettlementSecretHeader, secret)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutils.Do(r, http.MethodPost, "/wallet/settlements/"+id, "", SettlementSecretHeader, secret)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decode(t, w.Body.Bytes())["status"])

	w = testutils.Do(r, http.MethodGet, "/wallet/balance", "")
	assert.JSONEq(t, `{"balance":0,"pending_balance":0}`, w.Body.String())
}
