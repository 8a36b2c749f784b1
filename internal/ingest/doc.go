// Package ingest reads pipeline telemetry and turns it into simulation events.
//
// Telemetry arrives as NDJSON: one JSON object per line, each carrying an
// event type and an optional payload. The package provides three layers:
//
//   - DecodeLine turns a raw line into a [Message] (a pipeline event or a
//     health patch).
//   - [Reader] drains an io.Reader line by line, applying the ignore filter
//     and the controller admission gate.
//   - [Tailer] follows a growing log file via fsnotify, surviving rotation,
//     and feeds appended lines to a callback.
//
// Malformed lines are skipped by default (the visualization tolerates bad
// telemetry); strict mode turns the first decode failure into an error.
package ingest
