package preproc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"shaderpp/internal/diag"
)

// writeTree creates files under a temp dir and returns the dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func equalLines(t *testing.T, got, want []string) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Fatalf("lines mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestResolvePragmaOnceNestedReinclude(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.glsl": "#pragma once\nLINE_A\n#include \"b.glsl\"\n",
		"b.glsl": "#include \"a.glsl\"\nLINE_B\n",
	})
	got, err := Resolve(context.Background(), filepath.Join(dir, "a.glsl"), nil, NewOnceSet())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	equalLines(t, got, []string{"LINE_A\n", "LINE_B\n"})
}

func TestResolvePragmaOnceAcrossSiblings(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.glsl":   "#include \"x.glsl\"\nMAIN\n#include \"y.glsl\"\n",
		"x.glsl":      "X1\n#include \"common.glsl\"\nX2\n",
		"y.glsl":      "Y1\n#include \"common.glsl\"\nY2\n",
		"common.glsl": "#pragma once\nCOMMON\n",
	})
	once := NewOnceSet()
	got, err := Resolve(context.Background(), filepath.Join(dir, "main.glsl"), nil, once)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	equalLines(t, got, []string{"X1\n", "COMMON\n", "X2\n", "MAIN\n", "Y1\n", "Y2\n"})
	if once.Len() != 1 || !once.Has(filepath.Join(dir, "common.glsl")) {
		t.Errorf("once set = %v, want only common.glsl", once.Paths())
	}
}

func TestResolveWithoutPragmaOnceRepeats(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.glsl":  "#include \"chunk.glsl\"\n#include \"chunk.glsl\"\n",
		"chunk.glsl": "CHUNK\n",
	})
	got, err := Resolve(context.Background(), filepath.Join(dir, "main.glsl"), nil, NewOnceSet())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	equalLines(t, got, []string{"CHUNK\n", "CHUNK\n"})
}

func TestResolveContentBeforePragmaIsEmitted(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.glsl": "#include \"p.glsl\"\n#include \"p.glsl\"\nEND\n",
		"p.glsl":    "BEFORE\n  #pragma once  \nAFTER\n",
	})
	got, err := Resolve(context.Background(), filepath.Join(dir, "main.glsl"), nil, NewOnceSet())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	equalLines(t, got, []string{"BEFORE\n", "AFTER\n", "END\n"})
}

func TestResolveOnceSetSharedByCaller(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"lib.glsl": "#pragma once\nLIB\n",
	})
	once := NewOnceSet()
	lib := filepath.Join(dir, "lib.glsl")
	first, err := Resolve(context.Background(), lib, nil, once)
	if err != nil {
		t.Fatal(err)
	}
	equalLines(t, first, []string{"LIB\n"})
	second, err := Resolve(context.Background(), lib, nil, once)
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 0 {
		t.Errorf("second resolve = %q, want empty", second)
	}
}

func TestResolveDirectoryFirst(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"src/main.glsl": "#include \"c.glsl\"\n",
		"src/c.glsl":    "LOCAL\n",
		"inc/c.glsl":    "SEARCH\n",
	})
	got, err := Resolve(context.Background(), filepath.Join(dir, "src", "main.glsl"), []string{filepath.Join(dir, "inc")}, NewOnceSet())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	equalLines(t, got, []string{"LOCAL\n"})
}

func TestResolveSearchPathOrder(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"src/main.glsl":   "#include \"lib/d.glsl\"\n",
		"one/lib/d.glsl":  "ONE\n",
		"two/lib/d.glsl":  "TWO\n",
		"two/lib/e.glsl":  "E\n",
		"src/nested.glsl": "#include \"lib/d.glsl\"\n#include \"lib/e.glsl\"\n",
	})
	search := []string{filepath.Join(dir, "one"), filepath.Join(dir, "two")}

	got, err := Resolve(context.Background(), filepath.Join(dir, "src", "main.glsl"), search, NewOnceSet())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	equalLines(t, got, []string{"ONE\n"})

	got, err = Resolve(context.Background(), filepath.Join(dir, "src", "nested.glsl"), search, NewOnceSet())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	equalLines(t, got, []string{"ONE\n", "E\n"})
}

func TestResolveNestedIncludeUsesItsOwnDirectory(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.glsl":      "#include \"deep/mid.glsl\"\n",
		"deep/mid.glsl":  "#include \"leaf.glsl\"\n",
		"deep/leaf.glsl": "DEEP_LEAF\n",
		"leaf.glsl":      "TOP_LEAF\n",
	})
	got, err := Resolve(context.Background(), filepath.Join(dir, "main.glsl"), nil, NewOnceSet())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	equalLines(t, got, []string{"DEEP_LEAF\n"})
}

func TestResolveAbsoluteInclude(t *testing.T) {
	other := writeTree(t, map[string]string{"abs.glsl": "ABS\n"})
	abs := filepath.Join(other, "abs.glsl")
	dir := writeTree(t, map[string]string{
		"main.glsl": "#include \"" + filepath.ToSlash(abs) + "\"\n",
	})
	got, err := Resolve(context.Background(), filepath.Join(dir, "main.glsl"), nil, NewOnceSet())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	equalLines(t, got, []string{"ABS\n"})
}

func TestResolvePreservesRawLines(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.glsl": "  indented;\r\n\t#include \"tail.glsl\"\n#pragma  once\n#includex \"x.glsl\"\n",
		"tail.glsl": "no newline at end",
		"x.glsl":    "X\n",
	})
	got, err := Resolve(context.Background(), filepath.Join(dir, "main.glsl"), nil, NewOnceSet())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// "#includex" still starts with #include.
	equalLines(t, got, []string{"  indented;\r\n", "no newline at end", "#pragma  once\n", "X\n"})
}

func TestResolveMissingInclude(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.glsl": "A\n#include \"missing.glsl\"\n",
	})
	_, err := Resolve(context.Background(), filepath.Join(dir, "main.glsl"), []string{filepath.Join(dir, "inc")}, NewOnceSet())
	if !errors.Is(err, ErrIncludeNotFound) {
		t.Fatalf("err = %v, want ErrIncludeNotFound", err)
	}
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if perr.Target != "missing.glsl" || perr.Code != diag.PPIncludeNotFound {
		t.Errorf("unexpected error fields: %+v", perr)
	}
	if !strings.Contains(err.Error(), "missing.glsl") {
		t.Errorf("message should name the include: %v", err)
	}
}

func TestResolveMalformedInclude(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"unterminated quote", "#include \"foo.glsl\n"},
		{"angle brackets", "#include <foo.glsl>\n"},
		{"empty name", "#include \"\"\n"},
		{"bare", "#include\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeTree(t, map[string]string{"main.glsl": tt.line})
			_, err := Resolve(context.Background(), filepath.Join(dir, "main.glsl"), nil, NewOnceSet())
			if !errors.Is(err, ErrMalformedInclude) {
				t.Fatalf("err = %v, want ErrMalformedInclude", err)
			}
		})
	}
}

func TestResolveCyclicInclude(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.glsl":    "#include \"b.glsl\"\n",
		"b.glsl":    "#include \"a.glsl\"\n",
		"self.glsl": "SELF\n#include \"self.glsl\"\n",
	})
	_, err := Resolve(context.Background(), filepath.Join(dir, "a.glsl"), nil, NewOnceSet())
	if !errors.Is(err, ErrCyclicInclude) {
		t.Fatalf("err = %v, want ErrCyclicInclude", err)
	}
	var perr *Error
	if errors.As(err, &perr) && len(perr.Chain) != 3 {
		t.Errorf("chain = %v, want a -> b -> a", perr.Chain)
	}

	_, err = Resolve(context.Background(), filepath.Join(dir, "self.glsl"), nil, NewOnceSet())
	if !errors.Is(err, ErrCyclicInclude) {
		t.Fatalf("self include err = %v, want ErrCyclicInclude", err)
	}
}

func TestResolveReentryAfterPragmaOnce(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.glsl": "A\n#include \"b.glsl\"\n",
		"b.glsl": "#pragma once\nB\n#include \"a.glsl\"\n",
	})
	got, err := Resolve(context.Background(), filepath.Join(dir, "a.glsl"), nil, NewOnceSet())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	equalLines(t, got, []string{"A\n", "B\n", "A\n"})

	// b marks itself once, but c keeps looping back to a.
	dir = writeTree(t, map[string]string{
		"a.glsl": "#include \"b.glsl\"\n#include \"c.glsl\"\n",
		"b.glsl": "#pragma once\n#include \"a.glsl\"\n",
		"c.glsl": "#include \"a.glsl\"\n",
	})
	_, err = Resolve(context.Background(), filepath.Join(dir, "a.glsl"), nil, NewOnceSet())
	if !errors.Is(err, ErrCyclicInclude) {
		t.Fatalf("err = %v, want ErrCyclicInclude", err)
	}
}

func TestResolveSearchSkipsNonDirectoryComponent(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"src/main.glsl":  "#include \"lib/c.glsl\"\n",
		"src/lib":        "not a directory\n",
		"inc/lib/c.glsl": "FROM_SEARCH\n",
	})
	got, err := Resolve(context.Background(), filepath.Join(dir, "src", "main.glsl"), []string{filepath.Join(dir, "inc")}, NewOnceSet())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	equalLines(t, got, []string{"FROM_SEARCH\n"})
}

func TestResolveUnreadableInclude(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.glsl":          "#include \"folder.glsl\"\n",
		"folder.glsl/keep.x": "",
	})
	_, err := Resolve(context.Background(), filepath.Join(dir, "main.glsl"), nil, NewOnceSet())
	if !errors.Is(err, ErrUnreadableFile) {
		t.Fatalf("err = %v, want ErrUnreadableFile", err)
	}

	_, err = Resolve(context.Background(), filepath.Join(dir, "nope.glsl"), nil, NewOnceSet())
	if !errors.Is(err, ErrUnreadableFile) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("top-level err = %v, want ErrUnreadableFile wrapping ErrNotExist", err)
	}
}

func TestResolveCancelledContext(t *testing.T) {
	dir := writeTree(t, map[string]string{"main.glsl": "A\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Resolve(ctx, filepath.Join(dir, "main.glsl"), nil, NewOnceSet())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestResolverTreeAndReporter(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.glsl":   "#include \"common.glsl\"\n#include \"util.glsl\"\n",
		"util.glsl":   "#include \"common.glsl\"\nUTIL\n",
		"common.glsl": "#pragma once\nCOMMON\n",
	})
	bag := diag.NewBag(10)
	r := NewResolver(nil, nil, WithReporter(diag.BagReporter{Bag: bag}))
	if _, err := r.Resolve(context.Background(), filepath.Join(dir, "main.glsl")); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	root := r.Tree()
	if len(root.Children) != 2 {
		t.Fatalf("root children = %d, want 2", len(root.Children))
	}
	if root.Children[0].Skipped {
		t.Error("first common.glsl visit must not be skipped")
	}
	util := root.Children[1]
	if len(util.Children) != 1 || !util.Children[0].Skipped || util.Children[0].Target != "common.glsl" {
		t.Errorf("util children = %+v, want one skipped common.glsl", util.Children)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.PPPragmaOnceSkipped {
		t.Errorf("expected one skip diagnostic, got %+v", bag.Items())
	}
	if got := len(r.Files().Paths()); got != 3 {
		t.Errorf("loaded %d distinct files, want 3", got)
	}
}

func TestErrorDiagnosticNotes(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.glsl": "#include \"mid.glsl\"\n",
		"mid.glsl":  "#include \"gone.glsl\"\n",
	})
	_, err := Resolve(context.Background(), filepath.Join(dir, "main.glsl"), nil, NewOnceSet())
	d := AsDiagnostic(err)
	if d.Code != diag.PPIncludeNotFound {
		t.Fatalf("code = %v, want PPIncludeNotFound", d.Code)
	}
	if !strings.HasSuffix(d.Path, "mid.glsl") {
		t.Errorf("path = %q, want mid.glsl", d.Path)
	}
	if len(d.Notes) != 1 || !strings.HasSuffix(d.Notes[0].Path, "main.glsl") {
		t.Errorf("notes = %+v, want one note for main.glsl", d.Notes)
	}
}
