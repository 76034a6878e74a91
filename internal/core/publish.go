package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/JonMunkholm/langtool/internal/logging"
)

// Publish writes and uploads every locale in first-seen order, one at a time,
// then replaces the manifest.
//
// The first failing locale stops the loop. Locales handled before it keep
// their local file and remote copy, and the manifest is left untouched.
func (p *Pipeline) Publish(ctx context.Context, locales *Locales) (PublishResult, error) {
	if locales == nil {
		return PublishResult{}, &Error{Kind: KindAggregation, Err: errors.New("publish called without locales")}
	}

	if err := validateLocales(locales); err != nil {
		return PublishResult{URLs: map[string]string{}}, err
	}
	if _, clash := locales.Get(IndexName); clash && p.publishIndex {
		return PublishResult{URLs: map[string]string{}}, publishError(IndexName,
			fmt.Errorf("invalid locale code %q: reserved for the published index", IndexName))
	}

	logger := logging.FromContext(ctx)
	codes := locales.Codes()
	p.emit(ctx, Progress{Phase: PhasePublishing, Locales: codes})

	urls := make(map[string]string, len(codes))
	for _, code := range codes {
		dict, _ := locales.Get(code)

		payload, path, err := p.writeLocale(code, dict)
		if err != nil {
			return PublishResult{URLs: urls}, publishError(code, err)
		}
		logger.Debug("locale file written", "locale", code, "path", path, "bytes", len(payload))

		resourceID := p.ResourceID(code)
		if err := p.host.Upload(ctx, resourceID, payload); err != nil {
			return PublishResult{URLs: urls}, publishError(code, fmt.Errorf("upload %s: %w", resourceID, err))
		}

		url := p.host.URL(resourceID)
		urls[code] = url
		p.emit(ctx, Progress{Phase: PhaseLocalePublished, Locale: code, URL: url})
	}

	now := p.now().UTC()
	result := PublishResult{URLs: urls}

	if p.publishIndex {
		url, err := p.publishIndexFile(ctx, codes, urls, now)
		if err != nil {
			return result, &Error{Kind: KindPublish, Err: err}
		}
		result.IndexURL = url
		p.emit(ctx, Progress{Phase: PhaseIndexPublished, URL: url})
	}

	manifest := Manifest{URLs: urls, LastUpdated: now, IndexURL: result.IndexURL}
	if err := WriteManifest(p.manifestPath, manifest); err != nil {
		return result, &Error{Kind: KindPublish, Err: err}
	}
	p.emit(ctx, Progress{Phase: PhasePublished, Path: p.manifestPath})

	result.Success = true
	return result, nil
}

// publishIndexFile writes <outputDir>/index.json and uploads it beside the
// locale files.
func (p *Pipeline) publishIndexFile(ctx context.Context, codes []string, urls map[string]string, now time.Time) (string, error) {
	payload, err := marshalIndent(Index{Languages: codes, URLs: urls, LastUpdated: now})
	if err != nil {
		return "", fmt.Errorf("encode index: %w", err)
	}
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(p.outputDir, IndexName+".json")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	resourceID := p.ResourceID(IndexName)
	if err := p.host.Upload(ctx, resourceID, payload); err != nil {
		return "", fmt.Errorf("upload %s: %w", resourceID, err)
	}
	return p.host.URL(resourceID), nil
}

// WriteLocales writes every locale file without uploading anything.
func (p *Pipeline) WriteLocales(ctx context.Context, locales *Locales) error {
	if locales == nil {
		return &Error{Kind: KindAggregation, Err: errors.New("write called without locales")}
	}
	if err := validateLocales(locales); err != nil {
		return err
	}
	for _, code := range locales.Codes() {
		dict, _ := locales.Get(code)
		_, path, err := p.writeLocale(code, dict)
		if err != nil {
			return publishError(code, err)
		}
		p.emit(ctx, Progress{Phase: PhaseLocaleWritten, Locale: code, Path: path})
	}
	return nil
}

// DeleteLocale removes the published copy of locale from the asset host.
// Local files and the manifest are not touched.
func (p *Pipeline) DeleteLocale(ctx context.Context, locale string) error {
	if err := validateLocale(locale); err != nil {
		return publishError(locale, err)
	}
	resourceID := p.ResourceID(locale)
	if err := p.host.Delete(ctx, resourceID); err != nil {
		return publishError(locale, fmt.Errorf("delete %s: %w", resourceID, err))
	}
	logging.FromContext(ctx).Info("locale deleted from asset host", "locale", locale, "resource_id", resourceID)
	return nil
}

// writeLocale encodes dict and stores it as <outputDir>/<code>.json.
func (p *Pipeline) writeLocale(code string, dict Dictionary) ([]byte, string, error) {
	if err := validateLocale(code); err != nil {
		return nil, "", err
	}
	if dict == nil {
		dict = Dictionary{}
	}

	payload, err := marshalIndent(dict)
	if err != nil {
		return nil, "", fmt.Errorf("encode %s: %w", code, err)
	}
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(p.outputDir, code+".json")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return nil, "", fmt.Errorf("write %s: %w", path, err)
	}
	return payload, path, nil
}

// ReadDictionary loads a locale file written by the publisher.
func ReadDictionary(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var dict Dictionary
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return dict, nil
}

// validateLocales checks every code up front so a bad code fails the run
// before any file is written or uploaded.
func validateLocales(locales *Locales) error {
	for _, code := range locales.Codes() {
		if err := validateLocale(code); err != nil {
			dict, _ := locales.Get(code)
			return publishError(code, fmt.Errorf("%w (%d keys, e.g. %q)", err, len(dict), firstKey(dict)))
		}
	}
	return nil
}

func firstKey(dict Dictionary) string {
	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

// validateLocale rejects codes that cannot be used as a file name.
func validateLocale(code string) error {
	switch {
	case code == "":
		return errors.New("empty locale code")
	case code == "." || code == "..":
		return fmt.Errorf("invalid locale code %q", code)
	case strings.ContainsAny(code, `/\`):
		return fmt.Errorf("invalid locale code %q: contains a path separator", code)
	}
	return nil
}
