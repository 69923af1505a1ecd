package main

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var errEmptyReference = errors.New("empty asset reference")

// Inliner rewrites component files so that their templateUrl and styleUrls
// references become inline template and styles literals.
type Inliner struct {
	cfg       Config
	extractor Extractor
	minifier  Minifier
	summary   *Summary
	logger    *slog.Logger

	// write is swapped out in tests.
	write func(path, text string) error
}

func NewInliner(cfg Config, extractor Extractor, minifier Minifier, summary *Summary, logger *slog.Logger) *Inliner {
	if extractor == nil {
		extractor = regexExtractor{}
	}
	if summary == nil {
		summary = &Summary{}
	}
	return &Inliner{
		cfg:       cfg,
		extractor: extractor,
		minifier:  minifier,
		summary:   summary,
		logger:    defaultLogger(logger).With("component", "inliner"),
		write:     writeText,
	}
}

// Inline processes one component file. A reference that cannot be resolved or
// minified is logged and left in place; read and write failures are returned.
func (in *Inliner) Inline(file string) error {
	in.summary.Components.Add(1)
	in.logger.Debug("checking for resource urls", "file", file)

	text, err := readText(file)
	if err != nil {
		return err
	}

	refs := in.extractor.Extract(text)
	if len(refs) == 0 {
		return nil
	}

	srcDir := in.cfg.srcDirFor(filepath.Dir(file))
	assets := in.minifyAll(file, srcDir, refs)

	out, inlined := substitute(text, refs, assets)
	if inlined == 0 {
		return nil
	}
	in.summary.Inlined.Add(int64(inlined))

	if in.cfg.DryRun {
		in.logger.Info("would insert resources", "file", file, "count", inlined)
		return nil
	}
	in.logger.Info("inserting resources", "file", file, "count", inlined)
	if err := in.write(file, out); err != nil {
		return err
	}
	in.summary.Rewritten.Add(1)
	return nil
}

// minifyAll minifies every reference concurrently. The result has one slot
// per reference; a nil slot means that reference failed.
func (in *Inliner) minifyAll(file, srcDir string, refs []Reference) []*Asset {
	assets := make([]*Asset, len(refs))
	var wg sync.WaitGroup

	for i, ref := range refs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			asset, err := in.minifyOne(srcDir, ref)
			if err != nil {
				in.summary.Failed.Add(1)
				in.logger.Warn("failed to minify resource",
					"file", file, "kind", ref.Kind, "ref", ref.Path, "error", err)
				return
			}
			assets[i] = &asset
		}()
	}

	wg.Wait()
	return assets
}

func (in *Inliner) minifyOne(srcDir string, ref Reference) (Asset, error) {
	path, err := resolveReference(srcDir, ref.Path)
	if err != nil {
		return Asset{}, err
	}
	in.logger.Debug("minifying", "kind", ref.Kind, "path", path)
	if ref.Kind == TemplateRef {
		return in.minifier.MinifyTemplate(path)
	}
	return in.minifier.MinifyStyle(path)
}

// resolveReference joins a reference onto the mirrored source directory.
// Absolute references are taken as they are.
func resolveReference(srcDir, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errEmptyReference
	}
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref), nil
	}
	return filepath.Join(srcDir, filepath.FromSlash(ref)), nil
}

type edit struct {
	start, end int
	text       string
}

// substitute applies the minified assets to text and reports how many
// references were replaced. Edits are applied back to front so earlier spans
// stay valid.
func substitute(text string, refs []Reference, assets []*Asset) (string, int) {
	var edits []edit
	renamed := make(map[int]bool)

	for i, ref := range refs {
		asset := assets[i]
		if asset == nil {
			continue
		}
		literal := "'" + escapeLiteral(asset.Text) + "'"
		switch ref.Kind {
		case TemplateRef:
			edits = append(edits, edit{ref.Start, ref.End, "template: " + literal})
		case StyleRef:
			edits = append(edits, edit{ref.Start, ref.End, literal})
			if !renamed[ref.KeyStart] {
				renamed[ref.KeyStart] = true
				edits = append(edits, edit{ref.KeyStart, ref.KeyEnd, "styles"})
			}
		}
	}
	if len(edits) == 0 {
		return text, 0
	}

	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	for _, e := range edits {
		text = text[:e.start] + e.text + text[e.end:]
	}
	return text, len(edits) - len(renamed)
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
)

// escapeLiteral makes s safe to place between single quotes in JS source.
func escapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}
