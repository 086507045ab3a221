// Package assets serves distance-field assets to the rest of an
// application.
//
// A [Library] loads .dfield files on demand and keeps the most recently
// used ones in memory. Concurrent requests for the same path share a
// single load, and failed loads are never cached:
//
//	lib := assets.NewLibrary(64)
//	f, err := lib.Get("cards/ace.dfield")
//
// [Build] runs a batch of generate-and-save jobs with one
// [dfield.Generator], stopping between jobs when its context is done.
package assets
