package platform

// Package platform contains OS integration glue: filesystem helpers,
// document path resolution, and OS open/reveal for downloaded files.
