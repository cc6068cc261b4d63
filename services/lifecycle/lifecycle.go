// Package lifecycle manages uploaded content from creation to soft deletion.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/storage"
	"github.com/Macwinner1/Xecret/store"
)

var (
	ErrNoFile            = errors.New("no file uploaded")
	ErrFileTooLarge      = errors.New("file too large")
	ErrInvalidAccessType = errors.New("access type must be free or ppv")
	ErrInvalidPrice      = errors.New("pay-per-view content needs a positive price")
	ErrContentNotFound   = errors.New("content not found")
	ErrCreatorNotFound   = errors.New("creator not found")
	ErrNotCreator        = errors.New("not authorized")
	ErrDeletionLocked    = errors.New("deletion locked")
)

type UploadInput struct {
	CreatorID       string
	CreatorUsername string
	Title           string
	Description     string
	ContentType     string
	AccessType      models.AccessType
	Price           decimal.Decimal
	FileName        string
	MimeType        string
	Size            int64
	File            io.Reader
}

type Service struct {
	repo     store.Repository
	blobs    storage.BlobStore
	maxBytes int64
}

func New(repo store.Repository, blobs storage.BlobStore, maxBytes int64) *Service {
	return &Service{repo: repo, blobs: blobs, maxBytes: maxBytes}
}

// Upload stores the file bytes and creates an active content item. Access
// type and price are fixed from here on.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*models.Content, error) {
	if in.File == nil {
		return nil, ErrNoFile
	}
	if s.maxBytes > 0 && in.Size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	price := in.Price
	switch in.AccessType {
	case models.AccessFree:
		price = decimal.Zero
	case models.AccessPPV:
		if !price.IsPositive() {
			return nil, ErrInvalidPrice
		}
	default:
		return nil, ErrInvalidAccessType
	}

	blobID, err := s.blobs.Put(ctx, in.FileName, in.File)
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = in.FileName
	}
	content := &models.Content{
		CreatorID:       in.CreatorID,
		CreatorUsername: in.CreatorUsername,
		Title:           title,
		Description:     in.Description,
		ContentType:     in.ContentType,
		AccessType:      in.AccessType,
		Price:           price,
		BlobID:          blobID,
		FileMimetype:    in.MimeType,
		FileSize:        in.Size,
	}
	if err := s.repo.CreateContent(ctx, content); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return content, nil
}

// Get returns a content item unless it was deleted. Hidden content stays
// reachable by direct link.
func (s *Service) Get(ctx context.Context, id string) (*models.Content, error) {
	c, err := s.repo.GetContent(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	if c.IsDeleted {
		return nil, ErrContentNotFound
	}
	return c, nil
}

// List is the public feed: neither deleted nor hidden, newest first.
func (s *Service) List(ctx context.Context) ([]models.Content, error) {
	out, err := s.repo.ListContents(ctx, store.ContentFilter{ListedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return out, nil
}

// ListByCreator returns a creator's content that has not been deleted.
func (s *Service) ListByCreator(ctx context.Context, username string) ([]models.Content, error) {
	creator, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCreatorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get creator: %w", err)
	}

	out, err := s.repo.ListContents(ctx, store.ContentFilter{CreatorID: creator.ID})
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return out, nil
}

// Hide removes the content from feeds. Purchasers keep access.
func (s *Service) Hide(ctx context.Context, creatorID, id string) (*models.Content, error) {
	c, err := s.repo.UpdateContent(ctx, id, func(c *models.Content) error {
		if c.IsDeleted {
			return ErrContentNotFound
		}
		if c.CreatorID != creatorID {
			return ErrNotCreator
		}
		c.IsHidden = true
		return nil
	})
	return c, mapUpdateErr(err)
}

// Delete soft-deletes the content. Locked content is returned together with
// ErrDeletionLocked so callers can report the paid viewer count.
func (s *Service) Delete(ctx context.Context, creatorID, id string) (*models.Content, error) {
	var locked *models.Content
	var out *models.Content
	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		c, err := tx.UpdateContent(ctx, id, func(c *models.Content) error {
			if c.IsDeleted {
				return ErrContentNotFound
			}
			if c.CreatorID != creatorID {
				return ErrNotCreator
			}
			if c.DeletionLocked {
				snapshot := *c
				locked = &snapshot
				return ErrDeletionLocked
			}
			c.IsDeleted = true
			return nil
		})
		out = c
		return err
	})
	if errors.Is(err, ErrDeletionLocked) {
		return locked, ErrDeletionLocked
	}
	if err != nil {
		return nil, mapUpdateErr(err)
	}
	return out, nil
}

func mapUpdateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrContentNotFound
	case errors.Is(err, ErrContentNotFound), errors.Is(err, ErrNotCreator), errors.Is(err, ErrDeletionLocked):
		return err
	}
	return fmt.Errorf("update content: %w", err)
}
