// Package routing maps logical service names to backend base URLs.
//
// A Table is built once from a Source (inline config, a YAML file or a
// SQLite table) and published through a Store. Reloads, whether triggered by
// the file Watcher or the cron Scheduler, build a new Table and swap the
// Store reference, so request handlers never see a partially updated table.
//
// Router resolves a service name and joins the base URL with the request
// path:
//
//	router := routing.NewRouter(store)
//	target, err := router.Target("classifier", "/v1/predict")
//	if errors.Is(err, routing.ErrUnknownService) {
//	    // reject without calling any backend
//	}
package routing
