package main

import (
	"errors"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompiler stands in for Dart Sass.
type fakeCompiler struct {
	css string
	err error

	mu    sync.Mutex
	paths []string
}

func (f *fakeCompiler) Compile(path, source string) (string, error) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()
	return f.css, f.err
}

func (f *fakeCompiler) Close() error { return nil }

func TestMinifyTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.html")
	writeFile(t, path, `<!-- header -->
<div class="card" [ngClass]="{ active: isActive }" (click)="toggle()">
    <span *ngIf="title">  {{ title }}  </span>
</div>
`)

	asset, err := newAssetMinifier(nil).MinifyTemplate(path)
	require.NoError(t, err)

	assert.Equal(t, path, asset.Path)
	assert.NotContains(t, asset.Text, "header")
	assert.NotContains(t, asset.Text, "\n")
	assert.Contains(t, asset.Text, `[ngClass]="{ active: isActive }"`)
	assert.Contains(t, asset.Text, `(click)="toggle()"`)
	assert.Contains(t, asset.Text, `*ngIf="title"`)
	assert.Contains(t, asset.Text, "{{ title }}")
	assert.Contains(t, asset.Text, "</span></div>")
}

func TestMinifyTemplateMixedCaseAngular(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.html")
	writeFile(t, path, "<app-Card\n  [someInput]=\"x\"\n  #myRef>\n  <input [(ngModel)]=\"v\">\n</app-Card>\n")

	asset, err := newAssetMinifier(nil).MinifyTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, `<app-Card [someInput]="x" #myRef> <input [(ngModel)]="v"> </app-Card>`, asset.Text)
}

func TestMinifyTemplateCollapsesWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.html")
	writeFile(t, path, "<div>  x </div>")

	asset, err := newAssetMinifier(nil).MinifyTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "<div>x</div>", asset.Text)
}

func TestMinifyTemplateMissingFile(t *testing.T) {
	_, err := newAssetMinifier(nil).MinifyTemplate(filepath.Join(t.TempDir(), "nope.html"))
	assert.Error(t, err)
}

func TestMinifyStyleCSS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.css")
	writeFile(t, path, "/* comment */\n.a {\n  color: #ff0000;\n  margin: 0px;\n}\n")

	compiler := &fakeCompiler{}
	asset, err := newAssetMinifier(compiler).MinifyStyle(path)
	require.NoError(t, err)

	assert.Equal(t, ".a{color:red;margin:0}", asset.Text)
	assert.Empty(t, compiler.paths, "plain css must not be compiled")
}

func TestMinifyStyleCompilesSCSS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.scss")
	writeFile(t, path, "$w: 1px;\n.b { border: $w solid; }\n")

	compiler := &fakeCompiler{css: ".b {\n  border: 1px solid;\n}\n"}
	asset, err := newAssetMinifier(compiler).MinifyStyle(path)
	require.NoError(t, err)

	assert.Equal(t, ".b{border:1px solid}", asset.Text)
	assert.Equal(t, []string{path}, compiler.paths)
}

func TestMinifyStyleCompileError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.scss")
	writeFile(t, path, ".b {")

	boom := errors.New("expected }")
	_, err := newAssetMinifier(&fakeCompiler{err: boom}).MinifyStyle(path)
	assert.ErrorIs(t, err, boom)
}

func TestMinifyStyleUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.less")
	writeFile(t, path, "@a: 1;")

	_, err := newAssetMinifier(&fakeCompiler{}).MinifyStyle(path)
	assert.ErrorIs(t, err, errUnsupportedStyle)
}

func TestSassSyntax(t *testing.T) {
	_, err := sassSyntax("x.scss")
	assert.NoError(t, err)
	_, err = sassSyntax("x.SASS")
	assert.NoError(t, err)
	_, err = sassSyntax("x.css")
	assert.ErrorIs(t, err, errNotSass)
}

func TestDartSassCompile(t *testing.T) {
	if _, err := exec.LookPath("sass"); err != nil {
		t.Skip("sass binary not on PATH")
	}

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "_vars.scss"), "$c: blue;\n")
	path := filepath.Join(dir, "main.scss")
	writeFile(t, path, "@use 'vars';\n.x { color: vars.$c; }\n")

	compiler := newDartSass("", nil, nil)
	t.Cleanup(func() { _ = compiler.Close() })

	asset, err := newAssetMinifier(compiler).MinifyStyle(path)
	require.NoError(t, err)
	assert.Equal(t, ".x{color:blue}", asset.Text)
}

func TestDartSassCloseWithoutStart(t *testing.T) {
	assert.NoError(t, newDartSass("", nil, nil).Close())
}
