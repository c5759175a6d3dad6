// Package control implements the local control & debug endpoint: a UNIX
// stream socket accepting line-oriented text commands, one of which
// (DEBUG:<hex-bytes>) carries a binary sub-protocol for variable-level
// tracing and forcing.
//
// The accept loop and command dispatch live in server.go and commands.go;
// the five-function-code debug sub-protocol is implemented in debug.go.
package control
