// Package processor wires the explainer, transliteration client, history
// store and translator together from command-line flags, and drives the
// single-query, batch, history and server modes.
package processor
