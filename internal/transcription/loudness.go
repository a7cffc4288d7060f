package transcription

import (
	"encoding/binary"
	"math"
)

const (
	// FrameLength and HopLength define the RMS analysis window in samples.
	FrameLength = 2048
	HopLength   = 512

	sampleRate    = 16000
	minAmplitude  = 1e-5
	int16FullSize = 32768.0
)

// PeakRMSDecibels returns the loudest frame RMS of samples in decibels
// relative to full scale. Silence floors at -100 dB.
func PeakRMSDecibels(samples []int16, frameLength, hopLength int) float64 {
	if frameLength <= 0 {
		frameLength = FrameLength
	}
	if hopLength <= 0 {
		hopLength = HopLength
	}

	peak := 0.0
	for start := 0; start < len(samples); start += hopLength {
		end := start + frameLength
		if end > len(samples) {
			end = len(samples)
		}
		var sum float64
		for _, s := range samples[start:end] {
			v := float64(s) / int16FullSize
			sum += v * v
		}
		// Short trailing frames are treated as zero-padded.
		if rms := math.Sqrt(sum / float64(frameLength)); rms > peak {
			peak = rms
		}
		if end == len(samples) {
			break
		}
	}
	return AmplitudeToDecibels(peak)
}

// AmplitudeToDecibels converts a linear amplitude to dB with a floor of 1e-5.
func AmplitudeToDecibels(amplitude float64) float64 {
	return 20 * math.Log10(math.Max(amplitude, minAmplitude))
}

// decodeSamples interprets raw little-endian signed 16-bit PCM.
func decodeSamples(raw []byte) []int16 {
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return samples
}
