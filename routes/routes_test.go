package routes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Macwinner1/Xecret/config"
	"github.com/Macwinner1/Xecret/storage"
	"github.com/Macwinner1/Xecret/store"
	"github.com/Macwinner1/Xecret/testutils"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()
	os.Exit(m.Run())
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:          testutils.TestJWTSecret,
		JWTTTL:             time.Hour,
		SessionTTL:         time.Hour,
		SettlementDelay:    time.Hour,
		PlatformFeeRate:    decimal.NewFromFloat(0.1),
		RateLimitPerMinute: 1000,
		MaxUploadBytes:     1 << 20,
		CORSOrigins:        []string{"*"},
	}
}

func newRouter(cfg config.Config) *gin.Engine {
	return SetupRouter(NewDeps(cfg, store.NewMemoryStore(), storage.NewMemoryBlobStore()))
}

func login(t *testing.T, r http.Handler, username string) string {
	t.Helper()
	w := testutils.Do(r, http.MethodPost, "/api/auth/zk-login", `{"provider":"google","username":"`+username+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return "Bearer " + body["token"].(string)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func upload(t *testing.T, r http.Handler, token, accessType, price, data string) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "clip.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("access_type", accessType))
	require.NoError(t, mw.WriteField("price", price))
	require.NoError(t, mw.WriteField("title", "Clip"))
	require.NoError(t, mw.WriteField("content_type", "video"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/content/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["content_id"].(string)
}

func TestHealthAndMetrics(t *testing.T) {
	r := newRouter(testConfig())

	w := testutils.Do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = testutils.Do(r, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutils.Do(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "xecret_http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter(testConfig())

	w := testutils.Do(r, http.MethodOptions, "/api/content", "",
		"Origin", "http://localhost:3000",
		"Access-Control-Request-Method", "GET",
	)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newRouter(testConfig())

	for _, path := range []string{
		"/api/auth/me",
		"/api/payment/purchases",
		"/api/wallet/balance",
		"/api/social/bookmarks",
		"/api/messages/conversations",
	} {
		w := testutils.Do(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitPerMinute = 2
	r := newRouter(cfg)

	for i := 0; i < 2; i++ {
		w := testutils.Do(r, http.MethodGet, "/api/content", "")
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := testutils.Do(r, http.MethodGet, "/api/content", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// health checks are not limited
	w = testutils.Do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPurchaseAndStreamFlow(t *testing.T) {
	r := newRouter(testConfig())
	alice := login(t, r, "alice")
	bob := login(t, r, "bob")

	contentID := upload(t, r, alice, "ppv", "10", "secret-bytes")

	w := testutils.Do(r, http.MethodGet, "/api/content/"+contentID+"/access", "", "Authorization", bob)
	assert.Equal(t, false, decode(t, w)["has_access"])

	w = testutils.Do(r, http.MethodPost, "/api/stream/session", `{"content_id":"`+contentID+`"}`, "Authorization", bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutils.Do(r, http.MethodPost, "/api/payment/purchase", `{"content_id":"`+contentID+`","payment_method":"wallet"}`, "Authorization", bob)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	purchase := decode(t, w)
	assert.Equal(t, float64(10), purchase["amount"])
	assert.Equal(t, float64(9), purchase["creator_amount"])

	w = testutils.Do(r, http.MethodGet, "/api/wallet/balance", "", "Authorization", alice)
	assert.JSONEq(t, `{"balance":9,"pending_balance":0}`, w.Body.String())

	w = testutils.Do(r, http.MethodPost, "/api/stream/session", `{"content_id":"`+contentID+`"}`, "Authorization", bob)
	require.Equal(t, http.StatusOK, w.Code)
	key := decode(t, w)["session_key"].(string)

	w = testutils.Do(r, http.MethodGet, "/api/stream/"+contentID+"/file?session_key="+key, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "secret-bytes", w.Body.String())
	assert.Equal(t, "bob", w.Header().Get("X-Watermark"))

	// paid content cannot be deleted
	w = testutils.Do(r, http.MethodDelete, "/api/content/"+contentID, "", "Authorization", alice)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSocialAndMessagesFlow(t *testing.T) {
	r := newRouter(testConfig())
	alice := login(t, r, "alice")
	bob := login(t, r, "bob")
	contentID := upload(t, r, alice, "free", "", "free-bytes")

	w := testutils.Do(r, http.MethodPost, "/api/social/comments", `{"content_id":"`+contentID+`","comment_text":"nice @alice"}`, "Authorization", bob)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	commentID := decode(t, w)["comment_id"].(string)

	w = testutils.Do(r, http.MethodPost, "/api/social/comments/"+commentID+"/like", "", "Authorization", alice)
	assert.JSONEq(t, `{"success":true,"action":"liked","like_count":1}`, w.Body.String())

	w = testutils.Do(r, http.MethodGet, "/api/social/comments/"+contentID, "", "Authorization", alice)
	assert.Contains(t, w.Body.String(), `"is_liked":true`)

	w = testutils.Do(r, http.MethodPost, "/api/social/follow/alice", "", "Authorization", bob)
	assert.JSONEq(t, `{"success":true,"action":"followed"}`, w.Body.String())
	w = testutils.Do(r, http.MethodGet, "/api/social/follow/stats/alice", "")
	assert.JSONEq(t, `{"followers":1,"following":0}`, w.Body.String())

	w = testutils.Do(r, http.MethodPost, "/api/messages/send", `{"recipient_username":"alice","message_text":"hello"}`, "Authorization", bob)
	require.Equal(t, http.StatusOK, w.Code)
	w = testutils.Do(r, http.MethodGet, "/api/messages/unread-count", "", "Authorization", alice)
	assert.JSONEq(t, `{"unread_count":1}`, w.Body.String())
	w = testutils.Do(r, http.MethodGet, "/api/messages/conversation/bob", "", "Authorization", alice)
	assert.True(t, strings.Contains(w.Body.String(), `"message_text":"hello"`))
}
