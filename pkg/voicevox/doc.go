// Package voicevox is a client for the VOICEVOX speech synthesis engine,
// used to generate announcement audio, plus the persisted engine-wide
// synthesis settings (speaker, pitch, speed).
package voicevox
