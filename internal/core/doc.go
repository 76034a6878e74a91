// Package core fetches translation rows, aggregates them per locale and
// publishes the result.
//
// # Pipeline
//
// A run moves through three stages, strictly in order:
//
//  1. Fetch: a [RowSource] yields flat (locale, key, value) rows.
//  2. Aggregate: [Aggregate] folds rows into [Locales], one [Dictionary] per
//     locale code, remembering the order codes were first seen.
//  3. Publish: [Pipeline.Publish] writes <outputDir>/<locale>.json, uploads it
//     to an [AssetHost], and finally replaces the URL [Manifest].
//
// Any stage failure stops the run with an [*Error] whose Kind names the stage.
// Publish stops at the first failing locale and never writes a manifest for
// a partial run.
//
// Progress is reported through a [Notifier]. The CLI prints it in colour,
// the HTTP server logs it via [LogNotifier].
//
//	p := core.NewPipeline(src, host,
//	    core.WithOutputDir("public/locales"),
//	    core.WithManifestPath("cdn-urls.json"),
//	    core.WithNotifier(core.NewLogNotifier(ctx)),
//	)
//	locales, err := p.Run(ctx)
package core
