// Package messaging implements direct messages between users.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/store"
	"github.com/Macwinner1/Xecret/utils"
)

var (
	ErrMessageTextRequired = errors.New("message text required")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrSelfMessage         = errors.New("cannot message yourself")
	ErrUserNotFound        = errors.New("user not found")
)

type Service struct {
	repo store.Repository
}

func New(repo store.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Send(ctx context.Context, senderID string, req models.MessageCreate) (*models.Message, error) {
	if strings.TrimSpace(req.MessageText) == "" {
		return nil, ErrMessageTextRequired
	}
	recipient, err := s.repo.GetUserByUsername(ctx, req.RecipientUsername)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrRecipientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recipient: %w", err)
	}
	if recipient.ID == senderID {
		return nil, ErrSelfMessage
	}
	sender, err := s.repo.GetUser(ctx, senderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sender: %w", err)
	}

	msg := &models.Message{
		FromUserID:   sender.ID,
		FromUsername: sender.Username,
		ToUserID:     recipient.ID,
		ToUsername:   recipient.Username,
		MessageText:  req.MessageText,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	utils.LogSuccessWithUser(senderID, "Message sent to "+recipient.Username)
	return msg, nil
}

// Conversation returns the messages exchanged with username, oldest first.
// Messages the reader received in it are marked read beforehand.
func (s *Service) Conversation(ctx context.Context, readerID, username string) ([]models.Message, error) {
	other, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.repo.MarkRead(ctx, readerID, other.ID); err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	msgs, err := s.repo.ListConversation(ctx, readerID, other.ID)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	return msgs, nil
}

// Conversations lists one entry per peer, most recent exchange first, with
// the count of unread messages from that peer.
func (s *Service) Conversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	msgs, err := s.repo.ListMessagesFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	seen := make(map[string]bool)
	out := []models.Conversation{}
	for _, m := range msgs {
		peerID, peerName := m.ToUserID, m.ToUsername
		if m.ToUserID == userID {
			peerID, peerName = m.FromUserID, m.FromUsername
		}
		if seen[peerID] {
			continue
		}
		seen[peerID] = true

		unread, err := s.repo.CountUnread(ctx, userID, peerID)
		if err != nil {
			return nil, fmt.Errorf("count unread: %w", err)
		}
		out = append(out, models.Conversation{
			OtherUserID:     peerID,
			OtherUsername:   peerName,
			LastMessage:     m.MessageText,
			LastMessageTime: m.CreatedAt,
			UnreadCount:     unread,
		})
	}
	return out, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.CountUnread(ctx, userID, "")
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}
