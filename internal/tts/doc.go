// Package tts shells out to the configured speech synthesis CLI to turn
// scene narration text into WAV files.
package tts
