// Package provider defines the contract shared by the remote backends of the
// pipeline and the middleware that wraps them.
//
// A RequestResponse[I, O] takes one input and returns one output. Text
// generators implement RequestResponse[llm.CompletionRequest,
// llm.CompletionResponse]; cross-cutting behavior is layered with Chain:
//
//	gen := provider.Chain(
//	    provider.WithTracing[llm.CompletionRequest, llm.CompletionResponse]("longscribe"),
//	    provider.WithLogging[llm.CompletionRequest, llm.CompletionResponse](log),
//	    provider.WithMetrics[llm.CompletionRequest, llm.CompletionResponse](metrics),
//	)(adapter)
//
// Providers that hold resources also implement Closeable.
package provider
