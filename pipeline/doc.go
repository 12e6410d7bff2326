// Package pipeline runs one longscribe job end to end:
//
//	stage audio → transcribe → normalize → segment → rewrite → assemble → derive
//
// A Runner owns no state between runs. Every run gets a fresh run id that is
// attached to the context, the logs and the trace, and every artifact is
// written as a whole object, so an interrupted or gated run can simply be
// started again.
package pipeline
