// Package httpclient is the transport shared by the DashScope provider, the
// OpenAI-compatible generator and the Supabase storage backend.
//
// A Client is bound to one service: base URL, bearer token, default
// headers and a cap on response size. Responses are read whole. Non-2xx
// answers come back as a *StatusError next to the Response, so callers can
// still read provider error bodies; ServiceError folds either kind into the
// application error taxonomy.
//
// The rest subpackage adds typed JSON Get and Post.
package httpclient
