// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package metrics exports Prometheus counters for the site on a private
registry, served at GET /metrics.

# Collectors

	blossom_vote_pingbacks_total{shape,status_code}
	blossom_vote_events_total{outcome}
	blossom_vote_points_credited_total
	blossom_vote_nx_credited_total
	blossom_gameapi_requests_total{endpoint,result}
	blossom_http_requests_total{path,method,status_code}
	blossom_http_request_duration_seconds{path,method}

Go runtime and process collectors are registered alongside.

# Usage

Handlers record through the package-level helpers, which use a
process-wide Manager. Tests build their own Manager with NewManager so
counts start at zero.
*/
package metrics
