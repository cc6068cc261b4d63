package streaming

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/services/access"
	"github.com/Macwinner1/Xecret/storage"
	"github.com/Macwinner1/Xecret/store"
)

type fixture struct {
	repo    *store.MemoryStore
	svc     *Service
	now     time.Time
	creator *models.User
	viewer  *models.User
	free    *models.Content
	ppv     *models.Content
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		repo: store.NewMemoryStore(),
		now:  time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	blobs := storage.NewMemoryBlobStore()
	f.svc = New(f.repo, access.NewChecker(f.repo), blobs, Options{
		TTL: time.Hour,
		Now: func() time.Time { return f.now },
	})

	f.creator = &models.User{Username: "alice", WalletAddress: "0xa"}
	f.viewer = &models.User{Username: "bob", WalletAddress: "0xb"}
	require.NoError(t, f.repo.CreateUser(ctx, f.creator))
	require.NoError(t, f.repo.CreateUser(ctx, f.viewer))

	blobID, err := blobs.Put(ctx, "photo.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	f.free = &models.Content{CreatorID: f.creator.ID, AccessType: models.AccessFree, BlobID: blobID, FileMimetype: "image/jpeg"}
	f.ppv = &models.Content{CreatorID: f.creator.ID, AccessType: models.AccessPPV, Price: decimal.NewFromInt(10), BlobID: blobID}
	require.NoError(t, f.repo.CreateContent(ctx, f.free))
	require.NoError(t, f.repo.CreateContent(ctx, f.ppv))
	return f
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	grant, err := f.svc.CreateSession(ctx, f.viewer.ID, f.free.ID, "10.0.0.1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(grant.Session.SessionKey, "sk_"))
	assert.Len(t, grant.Session.SessionKey, 35)
	assert.Equal(t, f.now.Add(time.Hour), grant.Session.ExpiresAt)
	assert.Equal(t, "bob_"+"1740819600000", grant.Watermark)

	stored, err := f.repo.GetContent(ctx, f.free.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ViewCount)
}

func TestCreateSessionRequiresAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateSession(ctx, f.viewer.ID, f.ppv.ID, "")
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.CreateSession(ctx, f.creator.ID, f.ppv.ID, "")
	assert.NoError(t, err)

	require.NoError(t, f.repo.CreatePurchase(ctx, &models.Purchase{BuyerID: f.viewer.ID, ContentID: f.ppv.ID, CreatorID: f.creator.ID}))
	_, err = f.svc.CreateSession(ctx, f.viewer.ID, f.ppv.ID, "")
	assert.NoError(t, err)

	_, err = f.svc.CreateSession(ctx, f.viewer.ID, "missing", "")
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestSessionExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	grant, err := f.svc.CreateSession(ctx, f.viewer.ID, f.free.ID, "")
	require.NoError(t, err)
	key := grant.Session.SessionKey
	start := f.now

	f.now = start.Add(time.Hour - time.Millisecond)
	_, err = f.svc.ValidateSession(ctx, key, f.free.ID)
	assert.NoError(t, err)

	f.now = start.Add(time.Hour + time.Millisecond)
	_, err = f.svc.ValidateSession(ctx, key, f.free.ID)
	assert.ErrorIs(t, err, ErrInvalidSession)

	renewed, err := f.svc.RenewSession(ctx, f.viewer.ID, key)
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(time.Hour), renewed.ExpiresAt)

	_, err = f.svc.ValidateSession(ctx, key, f.free.ID)
	assert.NoError(t, err)
}

func TestValidateSessionMismatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	grant, err := f.svc.CreateSession(ctx, f.viewer.ID, f.free.ID, "")
	require.NoError(t, err)

	_, err = f.svc.ValidateSession(ctx, grant.Session.SessionKey, f.ppv.ID)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = f.svc.ValidateSession(ctx, "sk_unknown", f.free.ID)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = f.svc.ValidateSession(ctx, "", f.free.ID)
	assert.ErrorIs(t, err, ErrSessionKeyRequired)
}

func TestRenewSessionOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	grant, err := f.svc.CreateSession(ctx, f.viewer.ID, f.free.ID, "")
	require.NoError(t, err)

	_, err = f.svc.RenewSession(ctx, f.creator.ID, grant.Session.SessionKey)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.svc.RenewSession(ctx, f.viewer.ID, "sk_nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestOpenFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	grant, err := f.svc.CreateSession(ctx, f.viewer.ID, f.free.ID, "")
	require.NoError(t, err)

	file, err := f.svc.OpenFile(ctx, grant.Session.SessionKey, f.free.ID)
	require.NoError(t, err)
	defer file.Body.Close()

	data, err := io.ReadAll(file.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.Equal(t, "image/jpeg", file.Content.FileMimetype)
	assert.Equal(t, "bob", file.Session.Username)
}

func TestReportViolationThresholds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		report, err := f.svc.ReportViolation(ctx, f.viewer.ID, f.free.ID, models.ViolationScreenshot)
		require.NoError(t, err)
		assert.EqualValues(t, i, report.Count)
		switch {
		case i < 3:
			assert.Empty(t, report.Warning)
		case i < 5:
			assert.Equal(t, WarningMessage, report.Warning)
		default:
			assert.Equal(t, SuspensionMessage, report.Warning)
			assert.True(t, report.Suspended)
		}
	}

	user, err := f.repo.GetUser(ctx, f.viewer.ID)
	require.NoError(t, err)
	assert.True(t, user.IsSuspended)
	assert.Equal(t, 5, user.ViolationCount)

	_, err = f.svc.CreateSession(ctx, f.viewer.ID, f.free.ID, "")
	assert.ErrorIs(t, err, ErrSuspended)
}

func TestReportViolationAcceptsClientLabels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report, err := f.svc.ReportViolation(ctx, f.viewer.ID, f.free.ID, models.ViolationDevtoolsDetected)
	require.NoError(t, err)
	assert.EqualValues(t, 1, report.Count)

	report, err = f.svc.ReportViolation(ctx, f.viewer.ID, f.free.ID, "tab_hidden")
	require.NoError(t, err)
	assert.EqualValues(t, 2, report.Count)

	user, err := f.repo.GetUser(ctx, f.viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, user.ViolationCount)
}

func TestViolationLabel(t *testing.T) {
	assert.Equal(t, "devtools_detected", violationLabel(models.ViolationDevtoolsDetected))
	assert.Equal(t, "other", violationLabel("tab_hidden"))
}

func TestReportViolationRejectsBlankType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, kind := range []models.ViolationType{"", "   ", models.ViolationType(strings.Repeat("x", models.MaxViolationTypeLength+1))} {
		_, err := f.svc.ReportViolation(ctx, f.viewer.ID, f.free.ID, kind)
		assert.ErrorIs(t, err, ErrInvalidViolationType)
	}
}
