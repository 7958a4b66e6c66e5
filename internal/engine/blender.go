// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/open-rmf/meshconv/pkg/types"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunCapture(name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// RunCapture runs the command and folds its combined output into the error
// on failure, since headless Blender reports import/export problems on
// stdout rather than through its exit status message.
func (o *osExecutor) RunCapture(name string, args ...string) error {
	var buf bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, lastLine(buf.String()))
	}
	return nil
}

// lastLine returns the final non-empty line of s.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

// Blender drives a headless Blender binary. Each import runs one Blender
// process that loads the source and saves the scene to a session .blend
// file; the matching export runs a second process that opens that file and
// writes the destination. The session file is the explicit scene-state
// handle; Reset discards it.
type Blender struct {
	bin      string
	exec     executor
	stateDir string
	scene    string // session .blend path, empty when the session is clean
}

// NewBlender creates an engine around the given Blender binary. It verifies
// the binary is on PATH and allocates a directory for session state.
func NewBlender(bin string) (*Blender, error) {
	return newBlender(bin, defaultExec)
}

func newBlender(bin string, ex executor) (*Blender, error) {
	if _, err := ex.LookPath(bin); err != nil {
		return nil, fmt.Errorf("engine binary %s not found: %w", bin, err)
	}
	stateDir, err := os.MkdirTemp("", "meshconv-session-")
	if err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	return &Blender{bin: bin, exec: ex, stateDir: stateDir}, nil
}

// Name returns the engine binary name.
func (b *Blender) Name() string { return b.bin }

// Available reports whether the binary responds to a version probe.
func (b *Blender) Available() bool {
	if _, err := b.exec.LookPath(b.bin); err != nil {
		return false
	}
	return b.exec.RunSilent(b.bin, "--version") == nil
}

// Reset discards the current session scene, if any.
func (b *Blender) Reset() error {
	if b.scene == "" {
		return nil
	}
	if err := os.Remove(b.scene); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("discarding session scene: %w", err)
	}
	b.scene = ""
	return nil
}

// Close removes the session state directory. The engine is unusable after.
func (b *Blender) Close() error {
	b.scene = ""
	return os.RemoveAll(b.stateDir)
}

// Import loads the mesh at path into a fresh scene and saves it as the
// session scene.
func (b *Blender) Import(path string, opts ImportOptions) error {
	scene := filepath.Join(b.stateDir, "session.blend")
	expr := strings.Join([]string{
		"import bpy",
		"bpy.ops.wm.read_factory_settings(use_empty=True)",
		fmt.Sprintf("bpy.ops.wm.obj_import(filepath=%s, forward_axis=%s, up_axis=%s)",
			pyStr(path), pyStr(opts.ForwardAxis), pyStr(opts.UpAxis)),
		fmt.Sprintf("bpy.ops.wm.save_as_mainfile(filepath=%s)", pyStr(scene)),
	}, "\n")

	if err := b.run(expr, nil); err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}
	b.scene = scene
	return nil
}

// Export writes the session scene to path in the requested format.
func (b *Blender) Export(path string, opts ExportOptions) error {
	if b.scene == "" {
		return fmt.Errorf("exporting %s: no scene loaded", path)
	}
	expr := strings.Join([]string{
		"import bpy",
		fmt.Sprintf("bpy.ops.export_scene.gltf(filepath=%s, export_format=%s, export_yup=%s)",
			pyStr(path), pyStr(opts.Format), pyBool(opts.YUp)),
	}, "\n")

	if err := b.run(expr, []string{b.scene}); err != nil {
		return fmt.Errorf("exporting %s: %w", path, err)
	}
	return nil
}

// run executes the Blender binary headless with the given python expression,
// optionally opening a .blend file first.
func (b *Blender) run(expr string, open []string) error {
	args := []string{"-b", "--factory-startup"}
	args = append(args, open...)
	args = append(args, "--python-exit-code", "1", "--python-expr", expr)
	return b.exec.RunCapture(b.bin, args...)
}

// pyStr renders s as a quoted Python string literal.
func pyStr(s string) string {
	return fmt.Sprintf("%q", s)
}

// pyBool renders b as a Python boolean literal.
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

var defaultExec executor = &osExecutor{}

// Detect builds the engine configured by cfg and verifies it responds.
func Detect(cfg types.EngineConfig) (*Blender, error) {
	return detect(cfg, defaultExec)
}

func detect(cfg types.EngineConfig, ex executor) (*Blender, error) {
	bin := cfg.Binary
	if bin == "" {
		bin = types.DefaultEngineBinary
	}
	b, err := newBlender(bin, ex)
	if err != nil {
		return nil, err
	}
	if !b.Available() {
		b.Close()
		return nil, fmt.Errorf("engine %s found but not operational", bin)
	}
	return b, nil
}
