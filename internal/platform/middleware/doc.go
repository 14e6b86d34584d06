// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package middleware provides the HTTP decorators mounted in front of every
Jasht route.

Order matters. [api.NewServer] mounts them as:

	RequestID -> StructuredLogger -> Metrics -> Timeout -> RateLimiter
	-> PanicRecovery -> ErrorReporting -> Authenticate -> CORS

Authentication never rejects a request on its own. [RequireAuth] and
[RequireRole] are mounted per route group by the domain handlers.
*/
package middleware
