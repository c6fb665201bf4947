// Package xutil makes low-level X11 programming easier for small demo
// programs. It wraps a handful of core protocol requests behind a Display:
// creating a mapped top-level window, opening a core bitmap font,
// building a table of graphics contexts for a palette of named colors at
// 101 brightness levels, drawing text on a character grid, clearing a
// window and flushing the connection.
//
// # Servers
//
// All protocol traffic goes through the Server interface. The xgbserver
// package implements it on top of a real X server connection; imgserver
// renders into an in-memory image and termserver onto a terminal. A
// Display d is created by calling Open with one of them:
//
//	srv, err := xgbserver.Open("")
//	if err != nil {
//		log.Fatal(err)
//	}
//	d := xutil.Open(srv)
//	defer d.Close()
//
// # Resources
//
// Every Window, Font and ContextTable created through a Display is owned
// by it. Each has a Free method; Display.Close frees whatever is still
// live, newest first, and then closes the server connection.
//
// # Fonts
//
// Font names are X logical font descriptions, such as
//
//	-schumacher-clean-bold-r-normal--8-80-75-75-c-80-iso646.1991-irv
//
// The glyph cell size used for grid layout is read from the name: field 7
// is the pixel width and field 12 is ten times the pixel height. When the
// name cannot be parsed, the previous metrics are kept and the returned
// Font reports FontFallback.
//
// # Colors
//
// A ContextTable holds one graphics context per (color, level) pair. The
// foreground of the context for level l is the allocated 24-bit pixel
// with each of red, green and blue scaled by l/100, truncating.
package xutil
