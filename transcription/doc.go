// Package transcription defines the asynchronous speech-to-text contract and
// composes submit, bounded polling and fetch into one call.
//
// A provider exposes three steps:
//
//	taskID, err := p.Submit(ctx, transcription.SubmitRequest{AudioURL: url, Language: "zh"})
//	status, err := p.Poll(ctx, taskID)      // pending, succeeded or failed
//	transcript, err := p.Fetch(ctx, status) // raw transcript document
//
// Transcriber runs them with a fixed interval between polls and a maximum
// attempt count. The three exits map to a result, errors.TaskFailed and
// errors.Timeout respectively.
//
// Implementations: transcription/dashscope.
package transcription
