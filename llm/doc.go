// Package llm provides a config-driven text generation client built on the
// httpclient/rest foundation.
//
// The package provides:
//   - Universal types: [CompletionRequest], [CompletionResponse], [Message], [Usage]
//   - [Dialect]: encodes and decodes one provider's HTTP bodies
//   - [Adapter]: composes a REST client with a Dialect into a
//     provider.RequestResponse[CompletionRequest, CompletionResponse]
//   - [TextGenerator]: narrows any such provider to Generate(ctx, prompt)
//   - [ExtractObject]: layered JSON object recovery from model output
//
// Dialect packages register themselves on import:
//
//	import _ "github.com/kbukum/longscribe/llm/openai"
//
//	adapter, err := llm.New(llm.Config{
//	    Dialect: "openai",
//	    BaseURL: "https://api.openai.com/v1",
//	    APIKey:  key,
//	    Model:   "gpt-5.2",
//	})
//	gen := llm.NewTextGenerator(adapter)
//	text, err := gen.Generate(ctx, prompt)
//
// Providers that are not plain HTTP (llm/gemini wraps the genai SDK)
// implement RequestResponse directly and plug into the same generator.
package llm
