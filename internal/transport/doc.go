// Package transport carries bytes across the system boundary: delivering
// messages and files to users through a webhook, and fetching queued videos
// from their source URLs.
//
// The default Messenger posts to the webhook configured in config.toml and
// gracefully degrades to a no-op when delivery is disabled. Pipelines depend
// only on the interfaces so tests can capture deliveries in memory.
package transport
