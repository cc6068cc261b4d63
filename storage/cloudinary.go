package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"github.com/Macwinner1/Xecret/utils"
)

// Cloudinary stores blobs as Cloudinary assets. The blob id is the asset's
// secure URL, which Open fetches back.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
	client *http.Client
}

// NewCloudinary connects with the given credentials and pings the Admin API.
func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (*Cloudinary, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials are not set")
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := cld.Admin.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping cloudinary: %w", err)
	}

	utils.LogSuccess("Cloudinary initialized and connection verified")
	return &Cloudinary{
		cld:    cld,
		folder: folder,
		client: &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

func boolPointer(b bool) *bool {
	return &b
}

func (c *Cloudinary) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	params := uploader.UploadParams{
		Folder:         c.folder,
		PublicID:       uuid.NewString(),
		UniqueFilename: boolPointer(true),
		Overwrite:      boolPointer(false),
		ResourceType:   "auto",
	}

	result, err := c.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("upload %q to cloudinary: %w", name, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("upload %q to cloudinary: %s", name, result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("upload %q to cloudinary: empty secure url", name)
	}
	return result.SecureURL, nil
}

func (c *Cloudinary) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, id, nil)
	if err != nil {
		return nil, fmt.Errorf("build blob request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch blob: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrBlobNotFound
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("fetch blob: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
