// Package stats counts conversions per category (usually the conversion
// mode). The conversion packages never see it; the HTTP server owns a Sink
// and increments it after each successful request.
package stats
