package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/store"
)

func setup(t *testing.T) (*store.MemoryStore, *Service, []*models.User) {
	t.Helper()
	repo := store.NewMemoryStore()
	users := []*models.User{
		{Username: "alice", WalletAddress: "0xa"},
		{Username: "bob", WalletAddress: "0xb"},
		{Username: "carol", WalletAddress: "0xc"},
	}
	for _, u := range users {
		require.NoError(t, repo.CreateUser(context.Background(), u))
	}
	return repo, New(repo), users
}

func send(t *testing.T, svc *Service, from *models.User, to, text string) *models.Message {
	t.Helper()
	msg, err := svc.Send(context.Background(), from.ID, models.MessageCreate{RecipientUsername: to, MessageText: text})
	require.NoError(t, err)
	// keep created_at strictly increasing
	time.Sleep(2 * time.Millisecond)
	return msg
}

func TestSend(t *testing.T) {
	_, svc, users := setup(t)
	ctx := context.Background()
	alice := users[0]

	msg := send(t, svc, alice, "bob", "hello")
	assert.Equal(t, "alice", msg.FromUsername)
	assert.Equal(t, "bob", msg.ToUsername)
	assert.False(t, msg.IsRead)

	tests := []struct {
		name string
		req  models.MessageCreate
		err  error
	}{
		{"empty text", models.MessageCreate{RecipientUsername: "bob", MessageText: " "}, ErrMessageTextRequired},
		{"unknown recipient", models.MessageCreate{RecipientUsername: "zed", MessageText: "hi"}, ErrRecipientNotFound},
		{"self", models.MessageCreate{RecipientUsername: "alice", MessageText: "hi"}, ErrSelfMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(ctx, alice.ID, tt.req)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestConversationMarksRead(t *testing.T) {
	_, svc, users := setup(t)
	ctx := context.Background()
	alice, bob := users[0], users[1]

	send(t, svc, alice, "bob", "one")
	send(t, svc, bob, "alice", "two")
	send(t, svc, alice, "bob", "three")

	n, err := svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	msgs, err := svc.Conversation(ctx, bob.ID, "alice")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "one", msgs[0].MessageText)
	assert.Equal(t, "three", msgs[2].MessageText)

	n, err = svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// alice has not opened the thread yet
	n, err = svc.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.Conversation(ctx, bob.ID, "zed")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestConversations(t *testing.T) {
	_, svc, users := setup(t)
	ctx := context.Background()
	alice, bob, carol := users[0], users[1], users[2]

	send(t, svc, bob, "alice", "from bob")
	send(t, svc, carol, "alice", "from carol")
	send(t, svc, bob, "alice", "bob again")

	convs, err := svc.Conversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, convs, 2)

	assert.Equal(t, "bob", convs[0].OtherUsername)
	assert.Equal(t, "bob again", convs[0].LastMessage)
	assert.Equal(t, int64(2), convs[0].UnreadCount)

	assert.Equal(t, "carol", convs[1].OtherUsername)
	assert.Equal(t, int64(1), convs[1].UnreadCount)

	convs, err = svc.Conversations(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, alice.ID, convs[0].OtherUserID)
	assert.Equal(t, int64(0), convs[0].UnreadCount)
}
