// Package rest layers typed JSON requests over httpclient.
//
//	resp, err := rest.Post[taskResponse](ctx, client, "/services/audio/asr/transcription", body,
//	    rest.WithHeader("X-DashScope-Async", "enable"))
package rest
