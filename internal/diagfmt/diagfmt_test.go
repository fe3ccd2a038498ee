package diagfmt

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"shaderpp/internal/diag"
)

func sampleBag() *diag.Bag {
	bag := diag.NewBag(10)
	d := diag.New(diag.SevError, diag.PPIncludeNotFound, "/work/shaders/mid.glsl", `include file not found "gone.glsl"`).
		WithNote("/work/shaders/main.glsl", "included from here")
	bag.Add(d)
	bag.Add(diag.New(diag.SevInfo, diag.PPPragmaOnceSkipped, "/work/shaders/main.glsl", "skipped /work/shaders/common.glsl"))
	return bag
}

func TestPrettyPlain(t *testing.T) {
	var buf bytes.Buffer
	opts := PrettyOpts{PathMode: PathModeRelative, BaseDir: "/work", ShowNotes: true}
	if err := Pretty(&buf, sampleBag(), opts); err != nil {
		t.Fatal(err)
	}
	want := "shaders/mid.glsl: ERROR PP1002: include file not found \"gone.glsl\"\n" +
		"  note: shaders/main.glsl: included from here\n"
	if buf.String() != want {
		t.Errorf("Pretty output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyShowInfoAndColor(t *testing.T) {
	var buf bytes.Buffer
	opts := PrettyOpts{Color: true, PathMode: PathModeBasename, ShowInfo: true}
	if err := Pretty(&buf, sampleBag(), opts); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "\x1b[") {
		t.Error("expected ANSI escapes with Color enabled")
	}
	if !strings.Contains(out, "PP1005") {
		t.Errorf("info diagnostic missing:\n%s", out)
	}
	if strings.Contains(out, "note:") {
		t.Error("notes must be hidden unless ShowNotes")
	}
}

func TestPrettyUnknownCodeOmitsID(t *testing.T) {
	var buf bytes.Buffer
	d := diag.New(diag.SevError, diag.UnknownCode, "", "accepts 2 arg(s), received 1")
	if err := PrettyDiagnostic(&buf, &d, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "ERROR: accepts 2 arg(s), received 1\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleBag(), JSONOpts{PathMode: PathModeBasename, IncludeNotes: true, Max: 1}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Count != 1 {
		t.Fatalf("count = %d, want 1", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Code != "PP1002" || d.File != "mid.glsl" || d.Severity != "ERROR" {
		t.Errorf("unexpected diagnostic %+v", d)
	}
	if len(d.Notes) != 1 || d.Notes[0].File != "main.glsl" {
		t.Errorf("unexpected notes %+v", d.Notes)
	}
}

func TestFormatPathAutoKeepsOutsidePaths(t *testing.T) {
	base := t.TempDir()
	inside := filepath.Join(base, "a", "b.glsl")
	if got := formatPath(inside, PathModeAuto, base); got != "a/b.glsl" {
		t.Errorf("inside = %q", got)
	}
	outside := filepath.Join(filepath.Dir(base), "other.glsl")
	if got := formatPath(outside, PathModeAuto, base); got != filepath.ToSlash(outside) {
		t.Errorf("outside = %q", got)
	}
}
