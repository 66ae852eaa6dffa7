package testutil

import (
	"net/http"

	"folio/pkg/platform/middleware/metadata"
	"folio/pkg/requestcontext"
)

// WithRequestScope binds a request context to the request, simulating what the
// auth middleware does for an authenticated caller.
func WithRequestScope(req *http.Request, actorID, actorRole string) *http.Request {
	rc := requestcontext.New(actorID, actorRole)
	return req.WithContext(requestcontext.With(req.Context(), rc))
}

// WithClientMetadata attaches client IP and user agent to the request context,
// simulating the metadata middleware.
func WithClientMetadata(req *http.Request, ip, userAgent string) *http.Request {
	return req.WithContext(metadata.WithClientMetadata(req.Context(), ip, userAgent))
}
