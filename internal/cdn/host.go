// Package cdn uploads locale files to a public asset host.
//
// Two providers are supported: Cloudinary raw assets and any S3-compatible
// object store. Both address a locale by a resource id such as "i18n/en"
// and serve it as <resource id>.json.
package cdn

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/langtool/internal/config"
	"github.com/JonMunkholm/langtool/internal/core"
)

// Host is an asset host that can also verify its own configuration.
type Host interface {
	core.AssetHost
	Name() string
	Check(ctx context.Context) error
}

// FromConfig builds the host selected by CDN_PROVIDER.
func FromConfig(cfg *config.Config) (Host, error) {
	switch cfg.CDN.Provider {
	case config.ProviderCloudinary:
		return NewCloudinary(cfg.CDN.CloudName, cfg.CDN.APIKey, cfg.CDN.APISecret)
	case config.ProviderS3:
		return NewS3(S3Options{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			PublicURL: cfg.S3.PublicURL,
			UseSSL:    cfg.S3.UseSSL,
		})
	}
	return nil, fmt.Errorf("unknown CDN provider %q", cfg.CDN.Provider)
}
