// Package explain runs the external cdecl-style declaration explainer as a
// one-shot subprocess speaking a newline-delimited text protocol.
package explain
