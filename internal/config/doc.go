// Package config defines the format-agnostic decoder rules model, along with
// the Loader interface for reading rules from a concrete source.
//
// `config.Rules` is the single source of truth for the `fieldsplit` and
// `hierarchy` packages. Concrete loaders, such as the HCL one, live in
// separate packages.
package config
