// Package streaming issues short-lived session keys that gate raw file
// retrieval, and tracks content-protection violations.
package streaming

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Macwinner1/Xecret/metrics"
	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/services/access"
	"github.com/Macwinner1/Xecret/storage"
	"github.com/Macwinner1/Xecret/store"
	"github.com/Macwinner1/Xecret/utils"
)

const (
	WarningThreshold    = 3
	SuspensionThreshold = 5

	WarningMessage    = "Warning: Multiple violations detected. Next violation may result in suspension."
	SuspensionMessage = "Account suspended - too many violations"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrContentNotFound      = errors.New("content not found")
	ErrAccessDenied         = errors.New("access denied - purchase required")
	ErrSuspended            = errors.New("account suspended")
	ErrSessionKeyRequired   = errors.New("session key required")
	ErrInvalidSession       = errors.New("invalid or expired session")
	ErrSessionNotFound      = errors.New("session not found")
	ErrInvalidViolationType = errors.New("invalid violation type")
)

type Options struct {
	TTL time.Duration
	Now func() time.Time
}

type Service struct {
	repo   store.Repository
	access *access.Checker
	blobs  storage.BlobStore
	ttl    time.Duration
	now    func() time.Time
}

func New(repo store.Repository, checker *access.Checker, blobs storage.BlobStore, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	return &Service{repo: repo, access: checker, blobs: blobs, ttl: opts.TTL, now: opts.Now}
}

// Grant is a freshly issued session plus the watermark the player overlays.
type Grant struct {
	Session   *models.StreamSession
	Watermark string
}

// File is an open content file gated by a valid session.
type File struct {
	Content *models.Content
	Session *models.StreamSession
	Body    io.ReadCloser
}

type ViolationReport struct {
	Count     int64
	Warning   string
	Suspended bool
}

func newSessionKey() (string, error) {
	h, err := utils.RandomHex(16)
	if err != nil {
		return "", err
	}
	return "sk_" + h, nil
}

// CreateSession issues a session key bound to (user, content) after the
// access check passes, and counts a view.
func (s *Service) CreateSession(ctx context.Context, userID, contentID, ip string) (*Grant, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.IsSuspended {
		return nil, ErrSuspended
	}

	content, err := s.repo.GetContent(ctx, contentID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && content.IsDeleted) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}

	decision, err := s.access.CanAccess(ctx, userID, content)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, ErrAccessDenied
	}

	key, err := newSessionKey()
	if err != nil {
		return nil, err
	}
	now := s.now()
	session := &models.StreamSession{
		UserID:     userID,
		Username:   user.Username,
		ContentID:  contentID,
		SessionKey: key,
		IPAddress:  ip,
		ExpiresAt:  now.Add(s.ttl),
		CreatedAt:  now,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if _, err := s.repo.UpdateContent(ctx, contentID, func(c *models.Content) error {
		c.ViewCount++
		return nil
	}); err != nil {
		return nil, fmt.Errorf("count view: %w", err)
	}
	metrics.RecordSession()

	return &Grant{
		Session:   session,
		Watermark: user.Username + "_" + strconv.FormatInt(now.UnixMilli(), 10),
	}, nil
}

// ValidateSession returns the session when key and content match and it has
// not expired.
func (s *Service) ValidateSession(ctx context.Context, key, contentID string) (*models.StreamSession, error) {
	if key == "" {
		return nil, ErrSessionKeyRequired
	}
	session, err := s.repo.GetSessionByKey(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.ContentID != contentID || !session.Valid(s.now()) {
		return nil, ErrInvalidSession
	}
	return session, nil
}

// RenewSession resets the expiry of a session owned by userID to a full TTL
// from now.
func (s *Service) RenewSession(ctx context.Context, userID, key string) (*models.StreamSession, error) {
	session, err := s.repo.GetSessionByKey(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}

	renewed, err := s.repo.UpdateSession(ctx, session.ID, func(ss *models.StreamSession) error {
		ss.ExpiresAt = s.now().Add(s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("renew session: %w", err)
	}
	return renewed, nil
}

// OpenFile validates the session and opens the content's bytes. The caller
// closes Body.
func (s *Service) OpenFile(ctx context.Context, key, contentID string) (*File, error) {
	session, err := s.ValidateSession(ctx, key, contentID)
	if err != nil {
		return nil, err
	}

	content, err := s.repo.GetContent(ctx, contentID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && content.IsDeleted) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}

	body, err := s.blobs.Open(ctx, content.BlobID)
	if errors.Is(err, storage.ErrBlobNotFound) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return &File{Content: content, Session: session, Body: body}, nil
}

func validViolation(t models.ViolationType) bool {
	return strings.TrimSpace(string(t)) != "" && len(t) <= models.MaxViolationTypeLength
}

// violationLabel keeps the metric's label set bounded.
func violationLabel(t models.ViolationType) string {
	switch t {
	case models.ViolationScreenshot, models.ViolationScreenRecord, models.ViolationDevtools,
		models.ViolationDevtoolsDetected, models.ViolationDownload:
		return string(t)
	}
	return "other"
}

// ReportViolation records a violation and recounts the user's lifetime
// total. At SuspensionThreshold the account is suspended and further
// sessions are refused.
func (s *Service) ReportViolation(ctx context.Context, userID, contentID string, kind models.ViolationType) (*ViolationReport, error) {
	if !validViolation(kind) {
		return nil, ErrInvalidViolationType
	}

	report := &ViolationReport{}
	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("get user: %w", err)
		}
		if err := tx.CreateViolation(ctx, &models.Violation{
			UserID:        userID,
			ContentID:     contentID,
			ViolationType: kind,
			DetectedAt:    s.now(),
		}); err != nil {
			return fmt.Errorf("create violation: %w", err)
		}

		count, err := tx.CountViolations(ctx, userID)
		if err != nil {
			return fmt.Errorf("count violations: %w", err)
		}
		report.Count = count
		report.Suspended = count >= SuspensionThreshold

		_, err = tx.UpdateUser(ctx, userID, func(u *models.User) error {
			u.ViolationCount = int(count)
			if report.Suspended {
				u.IsSuspended = true
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordViolation(violationLabel(kind))
	switch {
	case report.Suspended:
		report.Warning = SuspensionMessage
		utils.LogErrorWithUser(userID, nil, "Account suspended after repeated violations")
	case report.Count >= WarningThreshold:
		report.Warning = WarningMessage
	}
	return report, nil
}
