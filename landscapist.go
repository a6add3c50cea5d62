// Package landscapist binds asynchronous image loading to bubbletea
// programs. A Model drives one image through a four-state lifecycle
// (none, loading, success, failure), cancelling in-flight work whenever
// its request identity changes or the component is closed, and renders
// each state into terminal cells.
//
// The package defines the Loader contract and the presentation side;
// the loader subpackage provides the production pipeline with HTTP,
// file and git fetchers plus memory and disk caching. Plugins observe
// state transitions and decorate rendered views through the
// ImageComponent set.
package landscapist
