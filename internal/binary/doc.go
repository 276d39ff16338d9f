// Package binary locates the engine executable and makes it runnable.
//
// The Discoverer searches, in order:
//  1. The explicit path in Config.EnginePath (if provided, and only it)
//  2. A local copy in Config.Dir (default: the working directory)
//  3. System PATH
//  4. Common installation directories (/usr/local/bin, /usr/bin, /usr/games)
//
// Local copies are shipped next to the service without reliable permission
// bits, so the Discoverer sets mode 0755 on them. The returned path is
// absolute.
//
//	discoverer := binary.NewDiscoverer(&binary.Config{Logger: log})
//	enginePath, err := discoverer.Discover(ctx)
package binary
