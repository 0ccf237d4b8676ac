// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the decoding lifecycle, decoupled from any
// specific entrypoint like a CLI.
//
// Every input stream (a file, or stdin) is decoded in its own session, so the
// field-split and hierarchy registries of one solver tree never leak into
// another. Streams are decoded concurrently and reported in input order.
package app
