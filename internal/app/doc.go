// Package app contains the core application logic. It wires configuration,
// logging, the class registry, the compiled-in plugin catalog, manifest
// declarations and the loadable manager, decoupled from any specific
// entrypoint like a CLI.
package app
