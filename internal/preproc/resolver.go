package preproc

import (
	"context"
	"path/filepath"
	"slices"
	"strconv"

	"shaderpp/internal/diag"
	"shaderpp/internal/source"
	"shaderpp/internal/trace"
)

// Node is one visit in the include tree of a unit.
type Node struct {
	Path     string  `json:"path"`
	Target   string  `json:"target,omitempty"`  // include name as written; empty for the root
	Skipped  bool    `json:"skipped,omitempty"` // visit elided by #pragma once
	Children []*Node `json:"children,omitempty"`
}

// Resolver expands includes for one compilation unit.
// It is not safe for concurrent use; create one per unit.
type Resolver struct {
	searchPaths []string
	once        *OnceSet
	files       *source.FileSet
	reporter    diag.Reporter
	stack       []string
	onceAt      []int // once.Len() when the matching stack entry was pushed
	root        *Node
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFileSet records every load in fs instead of a private FileSet.
func WithFileSet(fs *source.FileSet) Option {
	return func(r *Resolver) {
		if fs != nil {
			r.files = fs
		}
	}
}

// WithReporter receives informational diagnostics such as pragma-once skips.
func WithReporter(rep diag.Reporter) Option {
	return func(r *Resolver) {
		if rep != nil {
			r.reporter = rep
		}
	}
}

// NewResolver creates a resolver sharing once with its caller. A nil once
// gets a fresh set.
func NewResolver(searchPaths []string, once *OnceSet, opts ...Option) *Resolver {
	if once == nil {
		once = NewOnceSet()
	}
	r := &Resolver{
		searchPaths: slices.Clone(searchPaths),
		once:        once,
		files:       source.NewFileSet(),
		reporter:    diag.NopReporter{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve is a one-shot helper around NewResolver.
func Resolve(ctx context.Context, path string, searchPaths []string, once *OnceSet) ([]string, error) {
	return NewResolver(searchPaths, once).Resolve(ctx, path)
}

// Resolve returns the content of path with every include expanded in place.
// The caller guarantees that path exists; a read failure is still reported
// as ErrUnreadableFile.
func (r *Resolver) Resolve(ctx context.Context, path string) ([]string, error) {
	r.root = &Node{Path: source.NormalizePath(path)}
	return r.resolveFile(ctx, r.root)
}

// Files returns the FileSet holding every load made so far.
func (r *Resolver) Files() *source.FileSet {
	return r.files
}

// Once returns the shared once-set.
func (r *Resolver) Once() *OnceSet {
	return r.once
}

// Tree returns the include tree of the last Resolve call.
func (r *Resolver) Tree() *Node {
	return r.root
}

func (r *Resolver) resolveFile(ctx context.Context, node *Node) ([]string, error) {
	path := node.Path
	if r.once.Has(path) {
		node.Skipped = true
		return nil, nil
	}
	if r.cyclic(path) {
		chain := append(slices.Clone(r.stack), path)
		return nil, &Error{Code: diag.PPCyclicInclude, Kind: ErrCyclicInclude, Path: path, Chain: chain}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "file:"+path, trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span.ID())

	r.stack = append(r.stack, path)
	r.onceAt = append(r.onceAt, r.once.Len())
	defer func() {
		r.stack = r.stack[:len(r.stack)-1]
		r.onceAt = r.onceAt[:len(r.onceAt)-1]
	}()

	id, err := r.files.Load(path)
	if err != nil {
		span.End("unreadable")
		return nil, &Error{Code: diag.IOUnreadableFile, Kind: ErrUnreadableFile, Path: path, Chain: slices.Clone(r.stack), Err: err}
	}
	file := r.files.Get(id)

	out := make([]string, 0, len(file.Lines))
	for _, line := range file.Lines {
		switch Classify(line) {
		case DirectiveInclude:
			included, err := r.include(ctx, node, line)
			if err != nil {
				span.End("failed")
				return nil, err
			}
			out = append(out, included...)
		case DirectivePragmaOnce:
			r.once.Mark(path)
			trace.Point(tracer, trace.ScopeDirective, "pragma once", path, span.ID())
		default:
			out = append(out, line)
		}
	}

	span.WithExtra("lines", strconv.Itoa(len(out))).End("")
	return out, nil
}

// cyclic reports whether entering path again would repeat its enclosing
// visit exactly: path is on the stack and no file was marked once since.
func (r *Resolver) cyclic(path string) bool {
	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i] == path {
			return r.once.Len() == r.onceAt[i]
		}
	}
	return false
}

func (r *Resolver) include(ctx context.Context, parent *Node, line string) ([]string, error) {
	name, ok := IncludeTarget(line)
	if !ok {
		return nil, &Error{Code: diag.PPMalformedInclude, Kind: ErrMalformedInclude, Path: parent.Path, Target: line, Chain: slices.Clone(r.stack)}
	}
	resolved, ok := r.lookup(parent.Path, name)
	if !ok {
		return nil, &Error{Code: diag.PPIncludeNotFound, Kind: ErrIncludeNotFound, Path: parent.Path, Target: name, Chain: slices.Clone(r.stack)}
	}
	trace.Point(trace.FromContext(ctx), trace.ScopeDirective, "include", name+" => "+resolved, trace.CurrentSpan(ctx))

	child := &Node{Path: resolved, Target: name}
	parent.Children = append(parent.Children, child)
	lines, err := r.resolveFile(ctx, child)
	if err != nil {
		return nil, err
	}
	if child.Skipped {
		r.reporter.Report(diag.New(diag.SevInfo, diag.PPPragmaOnceSkipped, parent.Path, "skipped "+resolved))
	}
	return lines, nil
}

// lookup checks the including file's directory first, then every search
// path in order. An absolute name is used as is.
func (r *Resolver) lookup(including, name string) (string, bool) {
	if filepath.IsAbs(name) {
		if source.Exists(name) {
			return source.NormalizePath(name), true
		}
		return "", false
	}
	dirs := make([]string, 0, len(r.searchPaths)+1)
	dirs = append(dirs, filepath.Dir(including))
	dirs = append(dirs, r.searchPaths...)
	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if source.Exists(candidate) {
			return source.NormalizePath(candidate), true
		}
	}
	return "", false
}
