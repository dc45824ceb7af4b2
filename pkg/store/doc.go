// Package store records the outcome of last page discovery runs in Redis.
//
// Only the final value of a run is kept: the last populated page of a collection,
// together with how long and how many batches it took to find it. Individual probe
// results are never stored.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	recorder := store.NewRecorder(redisClient, 0)
//
//	err := recorder.Record(ctx, store.Record{
//		BaseURL:  "https://example.com/category/",
//		LastPage: 57,
//	})
//
//	rec, err := recorder.Last(ctx, "https://example.com/category/")
//	if errors.Is(err, store.ErrNotFound) {
//		// no discovery recorded yet
//	}
//
// # Key Format
//
//	lastpage:result:<scheme>://<host><path>[?query]
//
// Scheme and host are lower-cased and a trailing slash on the path is dropped, so
// "HTTPS://Example.com/list/" and "https://example.com/list" share one record.
package store
