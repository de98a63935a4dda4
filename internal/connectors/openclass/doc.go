// Package openclass implements the LmsProvider port for the OpenClass
// classroom API.
//
// OpenClass wraps most payloads twice: the HTTP body is a JSON envelope
// whose result.objects field holds a JSON-encoded string (or an array of
// them). The client unwraps both layers and returns domain values only.
//
// Requests are paced by a token-bucket limiter. BreakerProvider adds a
// circuit breaker around the fetch operations of any LmsProvider.
package openclass
