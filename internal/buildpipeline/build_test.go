package buildpipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shaderpp/internal/cache"
	"shaderpp/internal/diag"
	"shaderpp/internal/preproc"
	"shaderpp/internal/project"
	"shaderpp/internal/testkit"
)

func TestBuildWritesAllUnits(t *testing.T) {
	dir := testkit.WriteTree(t, map[string]string{
		"src/blit.vert.glsl": "#include \"common.glsl\"\nvoid main() {}\n",
		"src/post.frag.glsl": "#include \"common.glsl\"\n#include \"common.glsl\"\nvoid main() {}\n",
		"inc/common.glsl":    "#pragma once\nuniform float t;\n",
	})
	inc := []string{filepath.Join(dir, "inc")}
	user := []preproc.Define{{Name: "A", Value: "1"}}
	units := []project.Unit{
		project.NewUnit(filepath.Join(dir, "src", "blit.vert.glsl"), filepath.Join(dir, "out", "nested", "blit.glsl"), "300 es", user, inc),
		project.NewUnit(filepath.Join(dir, "src", "post.frag.glsl"), filepath.Join(dir, "out", "post.glsl"), "300 es", nil, inc),
	}
	sink := &SliceSink{}
	res, err := Build(context.Background(), &BuildRequest{Units: units, Jobs: 2, Progress: sink})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wantBlit := "#version 300 es\n#define A 1\n#define SVE2_VERTEX_SHADER \nuniform float t;\nvoid main() {}\n"
	if got := testkit.ReadFile(t, units[0].Output); got != wantBlit {
		t.Errorf("blit output:\n%q\nwant:\n%q", got, wantBlit)
	}
	if err := testkit.CheckAssembled(testkit.ReadFile(t, units[0].Output), "300 es", units[0].Defines); err != nil {
		t.Error(err)
	}
	wantPost := "#version 300 es\n#define SVE2_FRAGMENT_SHADER \nuniform float t;\nvoid main() {}\n"
	if got := testkit.ReadFile(t, units[1].Output); got != wantPost {
		t.Errorf("post output:\n%q\nwant:\n%q", got, wantPost)
	}

	for _, u := range res.Units {
		if !u.Written {
			t.Errorf("%s not written", u.Unit.Input)
		}
	}
	done := 0
	for _, ev := range sink.Events {
		if ev.Stage == StageWrite && ev.Status == StatusDone {
			done++
		}
	}
	if done != 2 {
		t.Errorf("expected 2 write/done events, got %d: %+v", done, sink.Events)
	}
	if !res.Timings.Has(StageResolve) || !res.Timings.Has(StageWrite) {
		t.Error("expected resolve and write timings")
	}
}

func TestBuildWritesNothingOnFailure(t *testing.T) {
	dir := testkit.WriteTree(t, map[string]string{
		"good.glsl": "GOOD\n",
		"bad.glsl":  "#include \"missing.glsl\"\n",
	})
	units := []project.Unit{
		project.NewUnit(filepath.Join(dir, "good.glsl"), filepath.Join(dir, "out", "good.glsl"), "300 es", nil, nil),
		project.NewUnit(filepath.Join(dir, "bad.glsl"), filepath.Join(dir, "out", "bad.glsl"), "300 es", nil, nil),
	}
	_, err := Build(context.Background(), &BuildRequest{Units: units, Jobs: 1})
	if !errors.Is(err, preproc.ErrIncludeNotFound) {
		t.Fatalf("err = %v, want ErrIncludeNotFound", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out")); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("output directory must not be created on failure, stat err = %v", statErr)
	}
}

func TestBuildFailureLeavesCacheUntouched(t *testing.T) {
	dir := testkit.WriteTree(t, map[string]string{
		"bad.glsl": "#include \"missing.glsl\"\n",
	})
	cacheDir := filepath.Join(dir, ".cache")
	c, err := cache.Open(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	units := []project.Unit{
		project.NewUnit(filepath.Join(dir, "bad.glsl"), filepath.Join(dir, "out", "bad.glsl"), "300 es", nil, nil),
	}
	_, err = Build(context.Background(), &BuildRequest{Units: units, Jobs: 1, Cache: c})
	if !errors.Is(err, preproc.ErrIncludeNotFound) {
		t.Fatalf("err = %v, want ErrIncludeNotFound", err)
	}
	if _, statErr := os.Stat(cacheDir); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("cache directory must not be created on failure, stat err = %v", statErr)
	}
}

func TestBuildRejectsSharedOutput(t *testing.T) {
	dir := testkit.WriteTree(t, map[string]string{
		"a/x.glsl": "AAA\n",
		"b/x.glsl": "BBB\n",
	})
	out := filepath.Join(dir, "out", "x.glsl")
	units := []project.Unit{
		project.NewUnit(filepath.Join(dir, "a", "x.glsl"), out, "300 es", nil, nil),
		project.NewUnit(filepath.Join(dir, "b", "x.glsl"), out, "300 es", nil, nil),
	}
	_, err := Build(context.Background(), &BuildRequest{Units: units})
	if !errors.Is(err, project.ErrInvalidOption) {
		t.Fatalf("err = %v, want ErrInvalidOption", err)
	}
	if _, statErr := os.Stat(out); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("output must not be written, stat err = %v", statErr)
	}
}

func TestBuildMissingVersionBeforeReading(t *testing.T) {
	dir := t.TempDir()
	units := []project.Unit{
		project.NewUnit(filepath.Join(dir, "does-not-exist.glsl"), filepath.Join(dir, "out.glsl"), " ", nil, nil),
	}
	_, err := Build(context.Background(), &BuildRequest{Units: units})
	if !errors.Is(err, preproc.ErrMissingVersion) {
		t.Fatalf("err = %v, want ErrMissingVersion", err)
	}
	if d := preproc.AsDiagnostic(err); d.Code != diag.PPMissingVersion {
		t.Errorf("diagnostic code = %v", d.Code)
	}
}

func TestBuildMissingInput(t *testing.T) {
	dir := t.TempDir()
	units := []project.Unit{
		project.NewUnit(filepath.Join(dir, "nope.glsl"), filepath.Join(dir, "out.glsl"), "100", nil, nil),
	}
	_, err := Build(context.Background(), &BuildRequest{Units: units})
	if !errors.Is(err, preproc.ErrUnreadableFile) {
		t.Fatalf("err = %v, want ErrUnreadableFile", err)
	}
}

func TestBuildSkipsCurrentOutputs(t *testing.T) {
	dir := testkit.WriteTree(t, map[string]string{
		"main.glsl": "#include \"lib.glsl\"\nMAIN\n",
		"lib.glsl":  "LIB\n",
	})
	c, err := cache.Open(filepath.Join(dir, ".cache"))
	if err != nil {
		t.Fatal(err)
	}
	units := []project.Unit{
		project.NewUnit(filepath.Join(dir, "main.glsl"), filepath.Join(dir, "out", "main.glsl"), "330", nil, nil),
	}
	req := &BuildRequest{Units: units, Cache: c}

	first, err := Build(context.Background(), req)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	if !first.Units[0].Written {
		t.Fatal("first build must write")
	}

	sink := &SliceSink{}
	req.Progress = sink
	second, err := Build(context.Background(), req)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if second.Units[0].Written {
		t.Error("unchanged output must not be rewritten")
	}
	cached := false
	for _, ev := range sink.Events {
		if ev.Status == StatusCached {
			cached = true
		}
	}
	if !cached {
		t.Error("expected a cached event")
	}

	if err := os.WriteFile(filepath.Join(dir, "lib.glsl"), []byte("LIB2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	third, err := Build(context.Background(), &BuildRequest{Units: units, Cache: c})
	if err != nil {
		t.Fatalf("third build: %v", err)
	}
	if !third.Units[0].Written {
		t.Error("changed dependency must trigger a write")
	}
	if got := testkit.ReadFile(t, units[0].Output); got != "#version 330\nLIB2\nMAIN\n" {
		t.Errorf("output = %q", got)
	}
}

func TestBuildReportsPragmaOnceSkips(t *testing.T) {
	dir := testkit.WriteTree(t, map[string]string{
		"main.glsl": "#include \"p.glsl\"\n#include \"p.glsl\"\n",
		"p.glsl":    "#pragma once\nP\n",
	})
	bag := diag.NewBag(10)
	units := []project.Unit{
		project.NewUnit(filepath.Join(dir, "main.glsl"), filepath.Join(dir, "out.glsl"), "300 es", nil, nil),
	}
	if _, err := Build(context.Background(), &BuildRequest{Units: units, Reporter: diag.BagReporter{Bag: bag}}); err != nil {
		t.Fatal(err)
	}
	if bag.Len() != 1 {
		t.Errorf("expected one skip diagnostic, got %d", bag.Len())
	}
}

func TestBuildEmptyRequest(t *testing.T) {
	if _, err := Build(context.Background(), &BuildRequest{}); err == nil {
		t.Error("expected error for empty request")
	}
	if _, err := Build(context.Background(), nil); err == nil {
		t.Error("expected error for nil request")
	}
}

func TestWriteFileReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "out.glsl")
	if err := WriteFile(path, []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(path, []byte("two")); err != nil {
		t.Fatal(err)
	}
	if got := testkit.ReadFile(t, path); got != "two" {
		t.Errorf("content = %q, want two", got)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}
