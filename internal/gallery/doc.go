// Package gallery implements the image gallery state shared by every Kuvia
// display surface.
//
// A Controller owns two cursors: a keyed List of image entries, where the
// key is the image URL, and an unkeyed List of zoom levels. It drives a
// Surface, which only reflects what the controller tells it and reports
// navigation, zoom and location events back through registered Handlers.
//
// # Selection and location
//
// Every user-driven move writes the selected image's URL to the surface's
// location so that a gallery position can be bookmarked. Programmatic
// selection of the image that is already current writes nothing, which lets
// a surface feed location changes back into LocationChanged without growing
// its history.
//
// # Broken images
//
// Entries load lazily on first Show. A failed load is reported once per
// entry; the controller then removes the entry, detaches its element and
// moves to a fallback. The empty-state warning is shown again when the last
// entry goes away.
//
// The package is not safe for concurrent use. Surfaces serialize all calls
// through their event loop.
package gallery
