// Package rewrite drives segments one at a time through a text generator.
//
// Run is a fold over the segment list. Each step renders the prompt from the
// segment text and the current memory, parses the generator's free-form
// answer, folds the answer back into memory, and persists the segment
// artifacts. The fold returns early when the generator asks for speaker
// confirmation and the caller did not supply a confirmed speaker map:
//
//	loop := rewrite.NewLoop(gen, template, writer,
//		rewrite.WithMemory(memory.NewController(1200, 3)),
//	)
//	report, err := loop.Run(ctx, segments, speakers, confirmed)
//	if err == nil && report.Outcome == rewrite.AwaitingConfirmation {
//		// speaker_map_draft.json was written; rerun with a confirmed map
//	}
//
// Generation errors abort the run. Malformed generator output never does:
// ParseResult degrades to an empty Result and the raw text is used instead.
package rewrite
