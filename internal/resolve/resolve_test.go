// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/open-rmf/meshconv/pkg/types"
)

func sourceSet(paths ...string) *types.SourceSet {
	set := types.NewSourceSet()
	for _, p := range paths {
		set.Add(p)
	}
	return set
}

func TestResolveWithoutOutDir(t *testing.T) {
	set := sourceSet("/data/a/model.obj", "/data/b/model.obj")

	mapping, err := Resolve(set, "", ".glb")
	if err != nil {
		t.Fatal(err)
	}

	want := types.OutputMapping{
		"/data/a/model.obj": "/data/a/model.glb",
		"/data/b/model.obj": "/data/b/model.glb",
	}
	assertMapping(t, mapping, want)
}

func TestResolveNaiveWhenNamesUnique(t *testing.T) {
	set := sourceSet("/data/a/chair.obj", "/data/b/table.obj", "/data/lamp.obj")

	mapping, err := Resolve(set, "/out", ".glb")
	if err != nil {
		t.Fatal(err)
	}

	// No shared base names, so depth never increases past the file name.
	want := types.OutputMapping{
		"/data/a/chair.obj": "/out/chair.glb",
		"/data/b/table.obj": "/out/table.glb",
		"/data/lamp.obj":    "/out/lamp.glb",
	}
	assertMapping(t, mapping, want)
}

func TestResolveDuplicatesAtDepthTwo(t *testing.T) {
	set := sourceSet("/data/a/model.obj", "/data/b/model.obj")

	mapping, err := Resolve(set, "/out", ".glb")
	if err != nil {
		t.Fatal(err)
	}

	want := types.OutputMapping{
		"/data/a/model.obj": "/out/a/model.glb",
		"/data/b/model.obj": "/out/b/model.glb",
	}
	assertMapping(t, mapping, want)
}

func TestResolveDuplicatesNeedDepthThree(t *testing.T) {
	set := sourceSet("/r/x/a/m.obj", "/r/y/a/m.obj")

	mapping, err := Resolve(set, "/out", ".glb")
	if err != nil {
		t.Fatal(err)
	}

	want := types.OutputMapping{
		"/r/x/a/m.obj": "/out/x/a/m.glb",
		"/r/y/a/m.obj": "/out/y/a/m.glb",
	}
	assertMapping(t, mapping, want)
}

func TestResolvePromotesExhaustedMember(t *testing.T) {
	// The shortest member runs out of components at depth 4 and settles on
	// its bare file name while the others keep escalating.
	set := sourceSet("/a/m.obj", "/b/a/m.obj", "/c/b/a/m.obj")

	mapping, err := Resolve(set, "/out", ".glb")
	if err != nil {
		t.Fatal(err)
	}

	want := types.OutputMapping{
		"/a/m.obj":     "/out/m.glb",
		"/b/a/m.obj":   "/out/b/a/m.glb",
		"/c/b/a/m.obj": "/out/c/b/a/m.glb",
	}
	assertMapping(t, mapping, want)
}

func TestResolveMixedDuplicatesAndUnique(t *testing.T) {
	// Sources outside the duplicate group keep the naive path even though
	// the group settles at a deeper depth.
	set := sourceSet("/data/a/model.obj", "/data/b/model.obj", "/data/chair.obj")

	mapping, err := Resolve(set, "/out", ".glb")
	if err != nil {
		t.Fatal(err)
	}

	if got := mapping["/data/chair.obj"]; got != "/out/chair.glb" {
		t.Errorf("unique source mapped to %s, want /out/chair.glb", got)
	}
	if got := mapping["/data/a/model.obj"]; got != "/out/a/model.glb" {
		t.Errorf("duplicate mapped to %s, want /out/a/model.glb", got)
	}
}

func TestResolveUnresolvable(t *testing.T) {
	// Two distinct path strings that normalize to the same components can
	// never be told apart by adding depth.
	set := sourceSet("m.obj", "./m.obj")

	mapping, err := Resolve(set, "/out", ".glb")
	if err == nil {
		t.Fatalf("expected error, got mapping %v", mapping)
	}
	if mapping != nil {
		t.Error("no partial mapping should be produced on failure")
	}

	var ue *UnresolvableError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want *UnresolvableError", err)
	}
	if len(ue.Sources) != 2 {
		t.Errorf("offending sources = %v, want both group members", ue.Sources)
	}
}

func TestResolveSameDirectoryStemCollision(t *testing.T) {
	// Explicitly named files bypass the extension filter, so two sources in
	// one directory can share a stem. Without an out-dir their outputs
	// coincide and must be rejected rather than silently overwritten.
	set := sourceSet("/a/m.obj", "/a/m.fbx")

	mapping, err := Resolve(set, "", ".glb")
	if err == nil {
		t.Fatalf("expected error, got mapping %v", mapping)
	}
	if !strings.Contains(err.Error(), "/a/m.glb") {
		t.Errorf("error = %v, want the colliding output named", err)
	}
}

func TestResolveOutputsAlwaysDistinct(t *testing.T) {
	sets := []*types.SourceSet{
		sourceSet("/a/m.obj", "/b/m.obj", "/c/m.obj"),
		sourceSet("/x/a/m.obj", "/y/a/m.obj", "/z/q.obj"),
		sourceSet("/a/m.obj", "/b/a/m.obj", "/c/b/a/m.obj", "/n.obj"),
	}

	for _, set := range sets {
		mapping, err := Resolve(set, "/out", ".glb")
		if err != nil {
			t.Fatal(err)
		}
		if len(mapping) != set.Len() {
			t.Errorf("mapping covers %d sources, want %d", len(mapping), set.Len())
		}
		if err := mapping.Validate(); err != nil {
			t.Errorf("outputs not distinct: %v", err)
		}
	}
}

func TestComponents(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/a/b/m.obj", []string{"/", "a", "b", "m.obj"}},
		{"a/m.obj", []string{"a", "m.obj"}},
		{"m.obj", []string{"m.obj"}},
		{"/m.obj", []string{"/", "m.obj"}},
	}
	for _, tt := range tests {
		got := components(tt.path)
		if len(got) != len(tt.want) {
			t.Errorf("components(%q) = %v, want %v", tt.path, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("components(%q)[%d] = %q, want %q", tt.path, i, got[i], tt.want[i])
			}
		}
	}
}

func assertMapping(t *testing.T, got, want types.OutputMapping) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("mapping has %d entries, want %d", len(got), len(want))
	}
	for src, dst := range want {
		if got[src] != filepath.FromSlash(dst) {
			t.Errorf("mapping[%s] = %s, want %s", src, got[src], dst)
		}
	}
}
