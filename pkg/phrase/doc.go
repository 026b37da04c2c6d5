// Package phrase holds the per-language announcement text templates used
// when pre-generating audio for receiver clients.
package phrase
