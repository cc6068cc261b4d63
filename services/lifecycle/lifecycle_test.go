package lifecycle

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/services/ledger"
	"github.com/Macwinner1/Xecret/storage"
	"github.com/Macwinner1/Xecret/store"
)

type fixture struct {
	repo    *store.MemoryStore
	blobs   *storage.MemoryBlobStore
	svc     *Service
	creator *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{repo: store.NewMemoryStore(), blobs: storage.NewMemoryBlobStore()}
	f.svc = New(f.repo, f.blobs, 1024)
	f.creator = &models.User{Username: "alice", WalletAddress: "0xalice"}
	require.NoError(t, f.repo.CreateUser(context.Background(), f.creator))
	return f
}

func (f *fixture) upload(t *testing.T, access models.AccessType, price string) *models.Content {
	t.Helper()
	c, err := f.svc.Upload(context.Background(), UploadInput{
		CreatorID:       f.creator.ID,
		CreatorUsername: f.creator.Username,
		Title:           "clip",
		ContentType:     "video",
		AccessType:      access,
		Price:           decimal.RequireFromString(price),
		FileName:        "clip.mp4",
		MimeType:        "video/mp4",
		Size:            5,
		File:            strings.NewReader("bytes"),
	})
	require.NoError(t, err)
	return c
}

func TestUploadStoresBlob(t *testing.T) {
	f := newFixture(t)
	c := f.upload(t, models.AccessPPV, "10")

	assert.NotEmpty(t, c.ID)
	assert.False(t, c.DeletionLocked)
	assert.Equal(t, "alice", c.CreatorUsername)

	rc, err := f.blobs.Open(context.Background(), c.BlobID)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "bytes", string(data))
}

func TestUploadFreeForcesZeroPrice(t *testing.T) {
	f := newFixture(t)
	c := f.upload(t, models.AccessFree, "7")
	assert.True(t, c.Price.IsZero())
}

func TestUploadValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := UploadInput{CreatorID: f.creator.ID, AccessType: models.AccessPPV, Price: decimal.NewFromInt(1), Size: 3, File: strings.NewReader("abc")}

	in := base
	in.File = nil
	_, err := f.svc.Upload(ctx, in)
	assert.ErrorIs(t, err, ErrNoFile)

	in = base
	in.Size = 2048
	_, err = f.svc.Upload(ctx, in)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	in = base
	in.AccessType = "subscription"
	_, err = f.svc.Upload(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidAccessType)

	in = base
	in.Price = decimal.Zero
	_, err = f.svc.Upload(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestHideKeepsDirectAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.upload(t, models.AccessFree, "0")
	other := f.upload(t, models.AccessFree, "0")

	_, err := f.svc.Hide(ctx, "someone-else", c.ID)
	assert.ErrorIs(t, err, ErrNotCreator)

	hidden, err := f.svc.Hide(ctx, f.creator.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, hidden.IsHidden)

	feed, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, other.ID, feed[0].ID)

	got, err := f.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	mine, err := f.svc.ListByCreator(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.upload(t, models.AccessFree, "0")

	_, err := f.svc.Delete(ctx, "someone-else", c.ID)
	assert.ErrorIs(t, err, ErrNotCreator)

	_, err = f.svc.Delete(ctx, f.creator.ID, c.ID)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrContentNotFound)

	_, err = f.svc.Delete(ctx, f.creator.ID, c.ID)
	assert.ErrorIs(t, err, ErrContentNotFound)

	_, err = f.svc.Delete(ctx, f.creator.ID, "missing")
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestDeleteLockedAfterPurchase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.upload(t, models.AccessPPV, "10")

	buyer := &models.User{Username: "bob", WalletAddress: "0xbob"}
	require.NoError(t, f.repo.CreateUser(ctx, buyer))
	l := ledger.New(f.repo, ledger.Options{FeeRate: decimal.RequireFromString("0.1")})
	_, err := l.RecordPurchase(ctx, buyer.ID, c.ID, "crypto")
	require.NoError(t, err)

	locked, err := f.svc.Delete(ctx, f.creator.ID, c.ID)
	assert.ErrorIs(t, err, ErrDeletionLocked)
	require.NotNil(t, locked)
	assert.Equal(t, 1, locked.PaidViewerCount)

	// hiding is still allowed
	_, err = f.svc.Hide(ctx, f.creator.ID, c.ID)
	assert.NoError(t, err)

	stored, err := f.repo.GetContent(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsDeleted)
}

func TestListByCreatorUnknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListByCreator(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrCreatorNotFound)
}
