// Package api serves the HTTP interface of the daemon.
//
// Routes (all under /api):
//
//	POST   /upload            multipart "file"; 202 with job id and status URL
//	GET    /status/{job}      job progress, owner-checked
//	GET    /search?query=     owner's memories matching query
//	GET    /memories          owner's memories, most recent first
//	DELETE /memories/{id}     owner-scoped delete
//	GET    /frames/{name}     owner-scoped keyframe JPEG
//	GET    /health            dependency, pool, and index status
//
// Every route passes the bearer-token check when a token is configured. The
// caller's owner id is taken from a trusted header set by the fronting proxy.
// Memory views carry absolute keyframe URLs and a minute-resolution upload
// date; internal paths never leave the server.
package api
