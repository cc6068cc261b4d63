// Package accounts creates users through the mock ZK login and issues the
// bearer tokens every authenticated route expects.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/store"
	"github.com/Macwinner1/Xecret/utils"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 20
)

var (
	ErrInvalidUsername = errors.New("username must be 3-20 characters")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrUserNotFound    = errors.New("user not found")
)

// TokenIssuer signs bearer tokens for a user.
type TokenIssuer interface {
	Generate(user models.User) (string, error)
}

type Service struct {
	repo   store.UserStore
	tokens TokenIssuer
}

func New(repo store.UserStore, tokens TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Session is a user together with a freshly signed token.
type Session struct {
	User  *models.User
	Token string
}

func ValidUsername(username string) bool {
	n := utf8.RuneCountInString(username)
	return n >= MinUsernameLength && n <= MaxUsernameLength
}

func newWalletAddress() (string, error) {
	h, err := utils.RandomHex(20)
	if err != nil {
		return "", err
	}
	return "0x" + h, nil
}

// ZkLogin registers a new verified account under username and signs it in.
func (s *Service) ZkLogin(ctx context.Context, provider, username string) (*Session, error) {
	if !ValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}

	wallet, err := newWalletAddress()
	if err != nil {
		return nil, fmt.Errorf("generate wallet: %w", err)
	}
	user := &models.User{
		Username:          username,
		WalletAddress:     wallet,
		Provider:          provider,
		AccountType:       models.AccountFree,
		IsVerified:        true,
		TotalEarnings:     decimal.Zero,
		TotalTipsReceived: decimal.Zero,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Generate(*user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	utils.LogSuccessWithUser(user.ID, "Account created for "+username)
	return &Session{User: user, Token: token}, nil
}

func (s *Service) Login(ctx context.Context, username string) (*Session, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	token, err := s.tokens.Generate(*user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}

// Profile returns what anyone may see about username.
func (s *Service) Profile(ctx context.Context, username string) (models.PublicProfile, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return models.PublicProfile{}, ErrUserNotFound
	}
	if err != nil {
		return models.PublicProfile{}, fmt.Errorf("get user: %w", err)
	}
	return user.Public(), nil
}

func (s *Service) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
