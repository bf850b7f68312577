// Package parser reads feature model files into the canonical fm
// representation. The serialization format is detected from the filename, so
// a directory of mixed files can be filtered with IsRecognized before any
// file is opened.
//
// Supported formats:
//
//	SXFM        (.sxfm, .splx)  — SPLOT XML with a tab-indented feature tree
//	FeatureIDE  (.xml)          — nested and/or/alt structure elements
//	Glencoe     (.json)         — feature map keyed by identifier
package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kbstats/internal/fm"
)

// Format identifies a feature model serialization format.
type Format int

const (
	Unknown Format = iota
	SXFM
	FeatureIDE
	Glencoe
)

// String returns the conventional format name.
func (f Format) String() string {
	switch f {
	case SXFM:
		return "SXFM"
	case FeatureIDE:
		return "FeatureIDE"
	case Glencoe:
		return "Glencoe"
	}
	return "unknown"
}

// Detect maps a filename to its feature model format. Only the extension is
// inspected; Unknown means the file is not a feature model.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".sxfm", ".splx":
		return SXFM
	case ".xml":
		return FeatureIDE
	case ".json":
		return Glencoe
	}
	return Unknown
}

// IsRecognized reports whether the filename belongs to a supported feature
// model format. Directory scans use this to skip unrelated files.
func IsRecognized(filename string) bool { return Detect(filename) != Unknown }

// ParseError describes a failure to read one feature model file.
type ParseError struct {
	Path   string
	Reason string
	Err    error // underlying cause, may be nil
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.Path, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseFile reads path and parses it according to its detected format.
func ParseFile(path string) (*fm.FeatureModel, error) {
	format := Detect(path)
	if format == Unknown {
		return nil, &ParseError{Path: path, Reason: "unrecognized feature model format"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Reason: "read file", Err: err}
	}
	switch format {
	case SXFM:
		return parseSXFM(path, data)
	case FeatureIDE:
		return parseFeatureIDE(path, data)
	default:
		return parseGlencoe(path, data)
	}
}
