package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Manifest is the terminal artifact of a publish run: where every locale
// can be downloaded from, and when that was last true.
type Manifest struct {
	URLs        map[string]string `json:"urls"`
	LastUpdated time.Time         `json:"lastUpdated"`
	IndexURL    string            `json:"indexUrl,omitempty"`
}

// IndexName is the file and resource name of the published index.
const IndexName = "index"

// Index lists every published locale. It is uploaded next to the locale
// files so clients can discover them from one well-known URL.
type Index struct {
	Languages   []string          `json:"languages"`
	URLs        map[string]string `json:"urls"`
	LastUpdated time.Time         `json:"lastUpdated"`
}

// Locales returns the manifest's locale codes sorted alphabetically.
func (m Manifest) Locales() []string {
	codes := make([]string, 0, len(m.URLs))
	for code := range m.URLs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// WriteManifest replaces the manifest at path. Earlier manifests are not merged.
func WriteManifest(path string, m Manifest) error {
	data, err := marshalIndent(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create manifest dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	if m.URLs == nil {
		m.URLs = map[string]string{}
	}
	return m, nil
}

// LocaleStatus is the reachability of one published locale.
type LocaleStatus struct {
	Locale     string
	URL        string
	StatusCode int
	Keys       int
	Err        error
}

// OK reports whether the URL served a JSON object.
func (s LocaleStatus) OK() bool {
	return s.Err == nil
}

// maxLocaleBody caps how much of a published locale is read when checking it.
const maxLocaleBody = 16 << 20

// CheckManifest fetches every URL in m and counts the translation keys it serves.
// Failures are reported per locale; the check itself never fails.
func CheckManifest(ctx context.Context, client *http.Client, m Manifest) []LocaleStatus {
	if client == nil {
		client = http.DefaultClient
	}

	statuses := make([]LocaleStatus, 0, len(m.URLs))
	for _, code := range m.Locales() {
		statuses = append(statuses, checkLocale(ctx, client, code, m.URLs[code]))
	}
	return statuses
}

func checkLocale(ctx context.Context, client *http.Client, code, url string) LocaleStatus {
	st := LocaleStatus{Locale: code, URL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		st.Err = fmt.Errorf("build request: %w", err)
		return st
	}
	resp, err := client.Do(req)
	if err != nil {
		st.Err = fmt.Errorf("connection failed: %w", err)
		return st
	}
	defer resp.Body.Close()

	st.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		st.Err = fmt.Errorf("not accessible (%d)", resp.StatusCode)
		return st
	}

	var dict Dictionary
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxLocaleBody)).Decode(&dict); err != nil {
		st.Err = fmt.Errorf("invalid locale JSON: %w", err)
		return st
	}
	st.Keys = len(dict)
	return st
}

// marshalIndent encodes v with two-space indentation and without HTML
// escaping, so translations containing <, > or & stay readable.
func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
