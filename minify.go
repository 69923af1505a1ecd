package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
)

const cssMediaType = "text/css"

// Minifier produces inline-ready assets from template and stylesheet files.
type Minifier interface {
	MinifyTemplate(path string) (Asset, error)
	MinifyStyle(path string) (Asset, error)
}

var errUnsupportedStyle = errors.New("unsupported stylesheet extension")

type assetMinifier struct {
	m        *minify.M
	compiler StyleCompiler
}

func newAssetMinifier(compiler StyleCompiler) *assetMinifier {
	m := minify.New()
	m.AddFunc(cssMediaType, css.Minify)
	return &assetMinifier{m: m, compiler: compiler}
}

func (a *assetMinifier) MinifyTemplate(path string) (Asset, error) {
	text, err := readText(path)
	if err != nil {
		return Asset{}, err
	}
	// Templates go through minifyTemplate rather than minify's html package,
	// which lower-cases tag and attribute names.
	out, err := minifyTemplate(text)
	if err != nil {
		return Asset{}, fmt.Errorf("minify %s: %w", path, err)
	}
	return Asset{Path: path, Text: out}, nil
}

func (a *assetMinifier) MinifyStyle(path string) (Asset, error) {
	text, err := readText(path)
	if err != nil {
		return Asset{}, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".css":
	case ".scss", ".sass":
		if a.compiler == nil {
			return Asset{}, fmt.Errorf("%s: no stylesheet compiler configured", path)
		}
		if text, err = a.compiler.Compile(path, text); err != nil {
			return Asset{}, err
		}
	default:
		return Asset{}, fmt.Errorf("%s: %w", path, errUnsupportedStyle)
	}

	out, err := a.m.String(cssMediaType, text)
	if err != nil {
		return Asset{}, fmt.Errorf("minify %s: %w", path, err)
	}
	return Asset{Path: path, Text: out}, nil
}
