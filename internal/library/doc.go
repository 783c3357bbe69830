// Package library keeps the catalog of executive orders known to the app.
//
// The Manager merges records fetched from a Source, answers the queries the
// UI needs (downloaded / not downloaded ids, display titles, file names) and
// persists the whole catalog to the library file after every mutating action.
package library
