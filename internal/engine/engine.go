// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine wraps the external 3D application that performs the actual
// mesh import and export. The application holds mutable session state (a
// "current scene") across calls, so the interface makes the acquire/use cycle
// explicit: reset to a clean scene, import one source, export it, repeat.
package engine

// ImportOptions fixes the axis convention of the source format.
type ImportOptions struct {
	// ForwardAxis and UpAxis name the source convention ("Y" forward,
	// "Z" up for Wavefront OBJ).
	ForwardAxis string
	UpAxis      string
}

// ExportOptions fixes the destination format and its axis convention.
type ExportOptions struct {
	// Format is the container variant, e.g. "GLB".
	Format string

	// YUp rotates the scene so +Y is up. glTF emitted by this pipeline
	// keeps +Z up, so this stays false.
	YUp bool
}

// ObjImport is the import configuration for Wavefront OBJ sources.
var ObjImport = ImportOptions{ForwardAxis: "Y", UpAxis: "Z"}

// GLBExport is the export configuration for binary glTF outputs.
var GLBExport = ExportOptions{Format: "GLB", YUp: false}

// Engine is the conversion capability: a single shared, stateful resource.
// At most one source is in flight at a time and callers reset the session
// before each use.
type Engine interface {
	// Name returns the engine name for diagnostics.
	Name() string

	// Available reports whether the engine binary exists and responds.
	Available() bool

	// Reset discards any previously loaded scene, returning the session
	// to a clean state.
	Reset() error

	// Import loads the mesh at path into the current scene.
	Import(path string, opts ImportOptions) error

	// Export writes the current scene to path. It fails when no scene has
	// been imported since the last reset.
	Export(path string, opts ExportOptions) error
}
