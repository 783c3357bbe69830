package model

// Package model defines the domain data shared across the app: executive order
// records and their download status, the year range picked in the UI, list
// entries rendered by the panes, and download batch results.
