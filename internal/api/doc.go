// Package api handles incoming HTTP requests for the classifieds backend:
// routing, request decoding and validation, and response formatting. It is
// an adapter between external clients and the internal services, translating
// HTTP concerns into listing, review and account operations and mapping
// service errors back to status codes.
package api
