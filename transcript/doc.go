// Package transcript turns a raw transcription document into an ordered list
// of sentences with optional timing.
//
// Providers disagree on field names, so Extract accepts several aliases for
// start (begin_time, start_time, start, offset) and end (end_time,
// stop_time, end) and falls back to plain text fields when no sentence list
// exists.
//
// # Time units
//
// Providers report times either in seconds or in milliseconds and the
// document does not say which. NormalizeTimes treats the whole transcript
// as seconds when the largest time is at most 100000 and as milliseconds
// otherwise. This is a heuristic: a millisecond transcript shorter than 100
// seconds is read as seconds, and a seconds transcript longer than about 27
// hours is read as milliseconds.
package transcript
