// Package resilience provides a circuit breaker for outbound calls.
//
// The backend's only outbound dependency is the download client. When
// the remote side fails repeatedly the breaker opens and downloads are
// rejected immediately until a cooldown passes, instead of tying up
// request handlers on a host that is not answering.
package resilience
