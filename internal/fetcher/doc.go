// Package fetcher provides the sequential, rate-limited HTTP client used
// for every request against the parts-diagram site.
//
// The site throttles aggressively and documents no rate contract, so the
// fetcher maintains one adaptive delay: it sleeps before every request,
// multiplies the delay on HTTP 429 or transport errors (clamped to a
// ceiling), and relaxes it toward a floor on success. One fetch is in
// flight at any time; the shared delay state is the mechanism that enforces
// the sequential discipline.
package fetcher
