package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/services/ledger"
	"github.com/Macwinner1/Xecret/store"
	"github.com/Macwinner1/Xecret/testutils"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()
	os.Exit(m.Run())
}

type env struct {
	repo    *store.MemoryStore
	h       *Handler
	creator models.User
	viewer  models.User
	ppv     models.Content
	free    models.Content
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	e := &env{repo: store.NewMemoryStore()}
	e.creator = models.User{Username: "alice", WalletAddress: "0xa"}
	e.viewer = models.User{Username: "bob", WalletAddress: "0xb"}
	require.NoError(t, e.repo.CreateUser(ctx, &e.creator))
	require.NoError(t, e.repo.CreateUser(ctx, &e.viewer))

	e.ppv = models.Content{CreatorID: e.creator.ID, AccessType: models.AccessPPV, Price: decimal.NewFromInt(10)}
	e.free = models.Content{CreatorID: e.creator.ID, AccessType: models.AccessFree}
	require.NoError(t, e.repo.CreateContent(ctx, &e.ppv))
	require.NoError(t, e.repo.CreateContent(ctx, &e.free))

	e.h = New(ledger.New(e.repo, ledger.Options{FeeRate: decimal.NewFromFloat(0.1)}))
	return e
}

func (e *env) router(as models.User) *gin.Engine {
	r := testutils.SetupTestRouter()
	g := r.Group("/payment", testutils.AsUser(as))
	g.POST("/purchase", e.h.Purchase)
	g.POST("/tip", e.h.Tip)
	g.GET("/purchases", e.h.Purchases)
	g.GET("/earnings", e.h.Earnings)
	return r
}

func TestPurchase(t *testing.T) {
	e := newEnv(t)
	r := e.router(e.viewer)

	w := testutils.Do(r, http.MethodPost, "/payment/purchase", `{"content_id":"`+e.ppv.ID+`","payment_method":"wallet"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(10), resp["amount"])
	assert.Equal(t, float64(9), resp["creator_amount"])
	assert.Equal(t, float64(1), resp["platform_fee"])
	assert.Len(t, resp["transaction_hash"], 66)

	w = testutils.Do(r, http.MethodGet, "/payment/purchases", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Purchases []models.PurchaseView `json:"purchases"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Purchases, 1)
	assert.Equal(t, e.ppv.ID, list.Purchases[0].Content.ID)

	earnings := testutils.Do(e.router(e.creator), http.MethodGet, "/payment/earnings", "")
	require.Equal(t, http.StatusOK, earnings.Code)
	var got models.Earnings
	require.NoError(t, json.Unmarshal(earnings.Body.Bytes(), &got))
	assert.True(t, got.TotalEarnings.Equal(decimal.NewFromInt(9)))
	assert.Len(t, got.ContentSales, 1)
}

func TestPurchaseErrors(t *testing.T) {
	e := newEnv(t)
	viewer := e.router(e.viewer)
	testutils.Do(viewer, http.MethodPost, "/payment/purchase", `{"content_id":"`+e.ppv.ID+`"}`)

	tests := []struct {
		name   string
		r      *gin.Engine
		body   string
		status int
		error  string
	}{
		{"already purchased", viewer, `{"content_id":"` + e.ppv.ID + `"}`, http.StatusBadRequest, "Already purchased"},
		{"free content", viewer, `{"content_id":"` + e.free.ID + `"}`, http.StatusBadRequest, "Content is not pay-per-view"},
		{"missing content", viewer, `{"content_id":"nope"}`, http.StatusNotFound, "Content not found"},
		{"own content", e.router(e.creator), `{"content_id":"` + e.ppv.ID + `"}`, http.StatusBadRequest, "Cannot purchase your own content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutils.Do(tt.r, http.MethodPost, "/payment/purchase", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.error+`"}`, w.Body.String())
		})
	}

	w := testutils.Do(viewer, http.MethodPost, "/payment/purchase", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTip(t *testing.T) {
	e := newEnv(t)
	r := e.router(e.viewer)

	w := testutils.Do(r, http.MethodPost, "/payment/tip", `{"recipient_username":"alice","amount":5,"message":"thanks","content_id":"`+e.free.ID+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(4.5), resp["recipient_amount"])
	assert.Equal(t, float64(0.5), resp["platform_fee"])

	content, err := e.repo.GetContent(context.Background(), e.free.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, content.TipCount)

	tests := []struct {
		name   string
		body   string
		status int
		error  string
	}{
		{"zero amount", `{"recipient_username":"alice","amount":0}`, http.StatusBadRequest, "Invalid amount"},
		{"negative amount", `{"recipient_username":"alice","amount":-1}`, http.StatusBadRequest, "Invalid amount"},
		{"unknown recipient", `{"recipient_username":"ghost","amount":1}`, http.StatusNotFound, "Recipient not found"},
		{"self", `{"recipient_username":"bob","amount":1}`, http.StatusBadRequest, "Cannot tip yourself"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutils.Do(r, http.MethodPost, "/payment/tip", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.error+`"}`, w.Body.String())
		})
	}
}
