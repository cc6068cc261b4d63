package streaming

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/services/access"
	"github.com/Macwinner1/Xecret/services/streaming"
	"github.com/Macwinner1/Xecret/storage"
	"github.com/Macwinner1/Xecret/store"
	"github.com/Macwinner1/Xecret/testutils"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()
	os.Exit(m.Run())
}

type env struct {
	h       *Handler
	creator models.User
	viewer  models.User
	free    models.Content
	ppv     models.Content
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	repo := store.NewMemoryStore()
	blobs := storage.NewMemoryBlobStore()
	e := &env{}
	e.creator = models.User{Username: "alice", WalletAddress: "0xa"}
	e.viewer = models.User{Username: "bob", WalletAddress: "0xb"}
	require.NoError(t, repo.CreateUser(ctx, &e.creator))
	require.NoError(t, repo.CreateUser(ctx, &e.viewer))

	blobID, err := blobs.Put(ctx, "clip.mp4", strings.NewReader("video-bytes"))
	require.NoError(t, err)
	e.free = models.Content{CreatorID: e.creator.ID, AccessType: models.AccessFree, BlobID: blobID, FileMimetype: "video/mp4", FileSize: 11}
	e.ppv = models.Content{CreatorID: e.creator.ID, AccessType: models.AccessPPV, Price: decimal.NewFromInt(2), BlobID: blobID}
	require.NoError(t, repo.CreateContent(ctx, &e.free))
	require.NoError(t, repo.CreateContent(ctx, &e.ppv))

	e.h = New(streaming.New(repo, access.NewChecker(repo), blobs, streaming.Options{TTL: time.Hour}))
	return e
}

func (e *env) router(as models.User) *gin.Engine {
	r := testutils.SetupTestRouter()
	r.GET("/stream/:id/file", e.h.File)
	g := r.Group("/stream", testutils.AsUser(as))
	g.POST("/session", e.h.CreateSession)
	g.POST("/session/renew", e.h.RenewSession)
	g.POST("/violation", e.h.ReportViolation)
	return r
}

func TestSessionAndFile(t *testing.T) {
	e := newEnv(t)
	r := e.router(e.viewer)

	w := testutils.Do(r, http.MethodPost, "/stream/session", `{"content_id":"`+e.free.ID+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var grant map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grant))
	key := grant["session_key"].(string)
	assert.True(t, strings.HasPrefix(key, "sk_"))
	assert.True(t, strings.HasPrefix(grant["watermark"].(string), "bob_"))

	w = testutils.Do(r, http.MethodGet, "/stream/"+e.free.ID+"/file?session_key="+key, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "video-bytes", w.Body.String())
	assert.Equal(t, "video/mp4", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store, no-cache, must-revalidate", w.Header().Get("Cache-Control"))
	assert.Equal(t, "bob", w.Header().Get("X-Watermark"))

	w = testutils.Do(r, http.MethodPost, "/stream/session/renew", `{"session_key":"`+key+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutils.Do(e.router(e.creator), http.MethodPost, "/stream/session/renew", `{"session_key":"`+key+`"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFileRejectsBadSessions(t *testing.T) {
	e := newEnv(t)
	r := e.router(e.viewer)

	w := testutils.Do(r, http.MethodGet, "/stream/"+e.free.ID+"/file", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Session key required"}`, w.Body.String())

	w = testutils.Do(r, http.MethodGet, "/stream/"+e.free.ID+"/file?session_key=sk_bogus", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid or expired session"}`, w.Body.String())

	// a key only opens the content it was issued for
	w = testutils.Do(r, http.MethodPost, "/stream/session", `{"content_id":"`+e.free.ID+`"}`)
	var grant map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grant))
	w = testutils.Do(r, http.MethodGet, "/stream/"+e.ppv.ID+"/file?session_key="+grant["session_key"].(string), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionRequiresPurchase(t *testing.T) {
	e := newEnv(t)

	w := testutils.Do(e.router(e.viewer), http.MethodPost, "/stream/session", `{"content_id":"`+e.ppv.ID+`"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Access denied - purchase required"}`, w.Body.String())

	w = testutils.Do(e.router(e.creator), http.MethodPost, "/stream/session", `{"content_id":"`+e.ppv.ID+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutils.Do(e.router(e.viewer), http.MethodPost, "/stream/session", `{"content_id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestViolations(t *testing.T) {
	e := newEnv(t)
	r := e.router(e.viewer)
	body := `{"content_id":"` + e.free.ID + `","violation_type":"screenshot"}`

	expected := []string{
		`{"success":true,"violation_count":1,"warning":null,"suspended":false}`,
		`{"success":true,"violation_count":2,"warning":null,"suspended":false}`,
		`{"success":true,"violation_count":3,"warning":"Warning: Multiple violations detected. Next violation may result in suspension.","suspended":false}`,
		`{"success":true,"violation_count":4,"warning":"Warning: Multiple violations detected. Next violation may result in suspension.","suspended":false}`,
		`{"success":true,"violation_count":5,"warning":"Account suspended - too many violations","suspended":true}`,
	}
	for _, want := range expected {
		w := testutils.Do(r, http.MethodPost, "/stream/violation", body)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, want, w.Body.String())
	}

	w := testutils.Do(r, http.MethodPost, "/stream/session", `{"content_id":"`+e.free.ID+`"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Account suspended - too many violations"}`, w.Body.String())

	w = testutils.Do(r, http.MethodPost, "/stream/violation", `{"violation_type":"devtools_detected"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"violation_count":6`)

	w = testutils.Do(r, http.MethodPost, "/stream/violation", `{"violation_type":" "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
