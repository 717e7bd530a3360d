package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ErrInvalidEncoding is returned when a document is not valid UTF-8
var ErrInvalidEncoding = errors.New("document is not valid UTF-8")

// FileOptions controls how RepairFile writes its result
type FileOptions struct {
	DryRun bool
	Backup bool
}

// FileResult is the outcome of repairing one file
type FileResult struct {
	Path    string `json:"path"`
	Report  Report `json:"report"`
	Written bool   `json:"written"`
	Output  string `json:"-"`
}

// ReadDocument reads the whole file at path as UTF-8 text
func ReadDocument(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", path, ErrInvalidEncoding)
	}
	return string(data), nil
}

// WriteDocument replaces the file at path with content, keeping its mode.
// With backup set the previous content is first copied to path + ".bak".
func WriteDocument(path, content string, backup bool) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	if backup {
		previous, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read for backup: %w", err)
		}
		if err == nil {
			if err := os.WriteFile(path+".bak", previous, mode); err != nil {
				return fmt.Errorf("write backup: %w", err)
			}
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("open for write: %w", err)
	}
	if _, err := io.WriteString(f, content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// RepairFile runs the pipeline over the file at path and writes the result
// back in place. Nothing is written when the document is unchanged or
// when opts.DryRun is set.
func RepairFile(path string, p *Pipeline, opts FileOptions) (FileResult, error) {
	result := FileResult{Path: path}

	input, err := ReadDocument(path)
	if err != nil {
		return result, err
	}

	output, report := p.Run(input)
	result.Report = report
	result.Output = output

	switch {
	case opts.DryRun:
		p.logger.Info("dry run, not writing", zap.String("path", path), zap.Int("rewrites", report.Total()))
	case !report.Changed:
		p.logger.Info("document already clean", zap.String("path", path))
	default:
		if err := WriteDocument(path, output, opts.Backup); err != nil {
			return result, err
		}
		result.Written = true
		p.logger.Info("document repaired",
			zap.String("path", path),
			zap.Int("rewrites", report.Total()),
			zap.Bool("backup", opts.Backup))
	}

	return result, nil
}
