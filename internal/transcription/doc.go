// Package transcription turns an uploaded media file into English text.
//
// A loudness gate runs first: the audio is decoded to mono 16 kHz PCM and the
// loudest RMS frame is compared against a decibel threshold. Quiet input
// short-circuits with a placeholder and never reaches the speech engine.
// Otherwise a compact audio track is extracted and sent to the engine's
// translate operation, which detects the source language and returns English
// in one pass. Every failure degrades to placeholder text; the stage never
// aborts the pipeline.
package transcription
