// Package crawler drives a listing document page by page and collects
// records for one score type.
//
// # State machine
//
// A run moves through
//
//	Init -> Loaded -> SizeConfigured -> ViewConfigured -> ScrapingPage(n)
//
// and ends in Done or Failed. Page-size and view configuration are best
// effort: their failures become a *ConfigurationWarning and the run goes
// on. When no view strategy succeeds the run is degraded and scrapes only
// the first page.
//
// Each visited page is extracted row by row, filtered through the
// Deduplicator and then the full record set is persisted. Killing the
// process after any checkpoint leaves a valid partition that the next run
// resumes from.
//
// # Errors
//
// Rows that do not parse are logged and skipped. Load timeouts
// (*ProviderTimeoutError), unusable next-page controls (*NavigationFailure)
// and failed writes (*PersistenceError) end the run in Failed.
//
// # Usage
//
//	c := crawler.New(
//	    func() (provider.Document, error) { return htmldoc.New(fetcher), nil },
//	    func(st model.ScoreType) crawler.Store { return store.New(store.PathFor(dir, st)) },
//	)
//	result, err := c.Run(ctx, model.ScoreTypeSAY)
package crawler
