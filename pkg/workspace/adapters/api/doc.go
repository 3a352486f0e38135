// Package api provides a workspace store that keeps snapshots on a remote
// postwoman server through its REST sync API.
//
// # Overview
//
// Store implements tree.Store, so a tree.Provider on top of it behaves like
// any other provider: handles, views and optimistic versioning all work
// the same way. Each save is a PUT of the whole snapshot; the server
// rejects stale versions with 409 Conflict, which surfaces as
// workspace.ErrConflict and makes the provider reload.
//
// # Configuration Example
//
//	provider "team" {
//	  type    = "remote"
//	  options = {
//	    base_url    = "https://postwoman.example.com"
//	    auth_token  = "$POSTWOMAN_TOKEN"
//	    timeout     = "30s"
//	    max_retries = 3
//	  }
//	}
//
// # Retries
//
// Transport failures, 429 and 5xx responses are retried with exponential
// backoff. Other 4xx responses fail immediately.
package api
