// Package web exposes the rendered metrics document over HTTP.
//
// A single path serves the exposition text; the scrape cycle runs on every
// request, so scraping the exporter is what polls the router.
package web
