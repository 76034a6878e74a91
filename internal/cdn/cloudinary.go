package cdn

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/JonMunkholm/langtool/internal/logging"
)

const cloudinaryDeliveryBase = "https://res.cloudinary.com"

// Cloudinary stores locale files as raw assets. Every upload overwrites the
// previous version and invalidates cached copies.
type Cloudinary struct {
	cld       *cloudinary.Cloudinary
	cloudName string
}

// NewCloudinary creates a client for the given account.
func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, wrapError(CodeInvalid, false, fmt.Errorf("cloudinary client: %w", err))
	}
	return &Cloudinary{cld: cld, cloudName: cloudName}, nil
}

// Name identifies the provider in logs and check output.
func (c *Cloudinary) Name() string {
	return "cloudinary (" + c.cloudName + ")"
}

// publicID is the raw asset id. Raw assets keep their extension in the id.
func publicID(resourceID string) string {
	return resourceID + ".json"
}

// Upload stores data under resourceID.
func (c *Cloudinary) Upload(ctx context.Context, resourceID string, data []byte) error {
	resp, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     publicID(resourceID),
		ResourceType: "raw",
		Overwrite:    api.Bool(true),
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return classifyMessage(err)
	}
	if resp.Error.Message != "" {
		return classifyMessage(errors.New(resp.Error.Message))
	}

	logging.FromContext(ctx).Debug("cloudinary upload complete",
		"public_id", resp.PublicID,
		"secure_url", resp.SecureURL,
		"bytes", resp.Bytes,
	)
	return nil
}

// Delete removes the asset stored under resourceID.
func (c *Cloudinary) Delete(ctx context.Context, resourceID string) error {
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID(resourceID),
		ResourceType: "raw",
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return classifyMessage(err)
	}
	if resp.Error.Message != "" {
		return classifyMessage(errors.New(resp.Error.Message))
	}
	if resp.Result != "ok" {
		return wrapError(CodeNotFound, false, fmt.Errorf("destroy %s: %s", publicID(resourceID), resp.Result))
	}
	return nil
}

// URL returns the public delivery URL of resourceID.
func (c *Cloudinary) URL(resourceID string) string {
	return fmt.Sprintf("%s/%s/raw/upload/%s", cloudinaryDeliveryBase, c.cloudName, publicID(resourceID))
}

// Check verifies the credentials against the Admin API.
func (c *Cloudinary) Check(ctx context.Context) error {
	resp, err := c.cld.Admin.Ping(ctx)
	if err != nil {
		return classifyMessage(err)
	}
	if resp.Error.Message != "" {
		return classifyMessage(errors.New(resp.Error.Message))
	}
	return nil
}
