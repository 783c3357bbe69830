// Package session bundles the collaborators built from one configuration
// snapshot: the document manager, the downloader and the library file path.
//
// A Holder owns the current Session. Reconfigure builds a complete new
// Session for a changed Config and swaps it in only when the build succeeds,
// so readers never observe a half-applied configuration.
package session
