package web

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/langtool/internal/core"
)

type statusData struct {
	Manifest *core.Manifest
	Runs     []core.RunRecord
	Sync     gateStatus
}

const pageStyle = `body{font-family:system-ui,sans-serif;max-width:56rem;margin:2rem auto;color:#1f2937}
table{border-collapse:collapse;width:100%}td,th{text-align:left;padding:.35rem .6rem;border-bottom:1px solid #e5e7eb}
.ok{color:#15803d}.fail{color:#b91c1c}.muted{color:#6b7280}`

// statusPage renders the manifest and the latest runs.
func statusPage(d statusData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}

		p.printf(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>langtool</title><style>%s</style></head><body>`, pageStyle)
		p.printf(`<h1>Locale publishing</h1>`)

		if d.Sync.Running {
			p.printf(`<p class="muted">Sync %s running since %s</p>`,
				templ.EscapeString(d.Sync.RunID), d.Sync.Since.UTC().Format("15:04:05 MST"))
		}

		p.printf(`<h2>Published locales</h2>`)
		if d.Manifest == nil || len(d.Manifest.URLs) == 0 {
			p.printf(`<p class="muted">Nothing published yet.</p>`)
		} else {
			p.printf(`<p class="muted">Last updated %s</p><table><tr><th>Locale</th><th>URL</th></tr>`,
				d.Manifest.LastUpdated.UTC().Format("2006-01-02 15:04:05 MST"))
			for _, code := range d.Manifest.Locales() {
				raw := d.Manifest.URLs[code]
				href := templ.EscapeString(string(templ.URL(raw)))
				p.printf(`<tr><td>%s</td><td><a href="%s">%s</a></td></tr>`, templ.EscapeString(code), href, templ.EscapeString(raw))
			}
			p.printf(`</table>`)
		}

		if d.Runs != nil {
			p.printf(`<h2>Recent runs</h2><table><tr><th>Started</th><th>Result</th><th>Locales</th><th>Duration</th></tr>`)
			for _, run := range d.Runs {
				result := `<span class="ok">ok</span>`
				if !run.Success {
					result = `<span class="fail">` + templ.EscapeString(run.Error) + `</span>`
				}
				p.printf(`<tr><td>%s</td><td>%s</td><td>%d</td><td>%s</td></tr>`,
					run.StartedAt.UTC().Format("2006-01-02 15:04:05"), result, len(run.Locales), run.Duration().Round(time.Millisecond))
			}
			p.printf(`</table>`)
		}

		p.printf(`</body></html>`)
		return p.err
	})
}

// pageWriter keeps the first write error.
type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
