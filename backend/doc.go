// Package backend implements the typed HTTP client for the marketplace auth
// API. Every response is parsed into a tagged success/failure variant at this
// boundary; callers never see raw success/status fields. A 401 is always
// surfaced as [ErrUnauthorized], transport failures wrap [ErrUnavailable],
// and well-formed rejections carry the server message via [ErrRejected].
package backend
