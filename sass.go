package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bep/godartsass/v2"
)

// StyleCompiler turns preprocessor stylesheets into plain CSS.
type StyleCompiler interface {
	Compile(path, source string) (string, error)
	Close() error
}

// dartSass compiles SCSS and indented SASS through the Dart Sass embedded
// protocol. The sass process is only started when the first stylesheet needs
// compiling, so runs without preprocessor files never require the binary.
type dartSass struct {
	binary       string
	includePaths []string
	logger       *slog.Logger

	once       sync.Once
	transpiler *godartsass.Transpiler
	startErr   error
}

func newDartSass(binary string, includePaths []string, logger *slog.Logger) *dartSass {
	return &dartSass{
		binary:       binary,
		includePaths: includePaths,
		logger:       defaultLogger(logger).With("component", "sass"),
	}
}

func (d *dartSass) start() (*godartsass.Transpiler, error) {
	d.once.Do(func() {
		d.logger.Debug("starting dart sass", "binary", d.binary)
		d.transpiler, d.startErr = godartsass.Start(godartsass.Options{
			DartSassEmbeddedFilename: d.binary,
			LogEventHandler: func(e godartsass.LogEvent) {
				d.logger.Warn("sass", "message", e.Message)
			},
		})
		if d.startErr != nil {
			d.startErr = fmt.Errorf("starting dart sass: %w", d.startErr)
		}
	})
	return d.transpiler, d.startErr
}

func (d *dartSass) Compile(path, source string) (string, error) {
	syntax, err := sassSyntax(path)
	if err != nil {
		return "", err
	}
	t, err := d.start()
	if err != nil {
		return "", err
	}

	includes := append([]string{filepath.Dir(path)}, d.includePaths...)
	res, err := t.Execute(godartsass.Args{
		Source:       source,
		URL:          "file://" + filepath.ToSlash(path),
		IncludePaths: includes,
		SourceSyntax: syntax,
		OutputStyle:  godartsass.OutputStyleCompressed,
	})
	if err != nil {
		return "", fmt.Errorf("compile %s: %w", path, err)
	}
	return res.CSS, nil
}

// Close stops the sass process if it was ever started.
func (d *dartSass) Close() error {
	if d.transpiler == nil {
		return nil
	}
	return d.transpiler.Close()
}

var errNotSass = errors.New("not a sass stylesheet")

func sassSyntax(path string) (godartsass.SourceSyntax, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".scss":
		return godartsass.SourceSyntaxSCSS, nil
	case ".sass":
		return godartsass.SourceSyntaxSASS, nil
	}
	return godartsass.SourceSyntaxCSS, fmt.Errorf("%s: %w", path, errNotSass)
}
