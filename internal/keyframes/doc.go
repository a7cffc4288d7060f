// Package keyframes samples still frames from uploaded video.
//
// The file is probed first; audio-only or unreadable inputs yield no frames
// and no error. Otherwise ffmpeg keeps every Nth decoded frame as a JPEG.
// Frames are decoded into a scratch directory and then linked into the
// frames directory as <prefix>_frame_<index>.jpg, where prefix is a fresh
// 8-character random id per call and index is the source frame number. A
// decode failure after a successful probe removes all partial output.
package keyframes
