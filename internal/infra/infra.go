// Package infra holds the plumbing shared by market providers: a TTL cache
// for fetched payloads, a request rate limiter and the HTTP GET helper.
package infra
