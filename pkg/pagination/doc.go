// Package pagination discovers the last populated page of a paginated collection
// whose total page count is not exposed by the provider.
//
// The provider is probed over HTTP in small concurrent batches. Every probed page is
// classified by response size: a 200 response whose body is larger than the
// populated-page threshold counts as populated, a smaller non-empty body counts as an
// empty (template) page, and anything else (non-200, transport error, timeout, empty
// body) carries no information and is skipped.
//
// Example usage:
//
//	fetcher := pagination.NewBatchFetcher(httpClient, pagination.DefaultConfig(baseURL))
//	searcher, err := pagination.NewSearcher(fetcher, pagination.DefaultSearchConfig())
//	lastPage, err := searcher.FindLastPopulatedIndex(ctx)
//
// The searcher:
//   - Samples roughly ten pages of the current scope in one batch
//   - Narrows the window between the highest populated and lowest empty sample
//   - Advances to the next scope when a scope holds no empty page
//   - Stops once the populated and empty pages are adjacent
package pagination
