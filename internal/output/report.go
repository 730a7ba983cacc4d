/*
PURPOSE:
  Persists ValidationReports as indented JSON or YAML and reads them back.

REQUIREMENTS:
  User-specified:
  - Stable, human-diffable structured text with field order preserved.
  - Numbers in plain decimal notation.
  - Failure to write is an IOError and never invalidates the in-memory report.

  Implementation-discovered:
  - Format follows the file extension: .yaml/.yml is YAML, anything else JSON.
  - The file is written to a temp sibling and renamed so a crash never leaves
    half a report behind.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (runner), internal/cli (validate)

ERROR HANDLING:
  - Every failure wraps model.ErrIO.

RELATED FILES:
  - internal/model/report.go
  - internal/model/decimal.go
*/

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/daryltucker/model-harness/internal/model"
)

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// EncodeReport renders r in the format implied by path.
func EncodeReport(r *model.ValidationReport, path string) ([]byte, error) {
	var buf bytes.Buffer
	if isYAML(path) {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PersistReport writes r to path.
func PersistReport(r *model.ValidationReport, path string) error {
	data, err := EncodeReport(r, path)
	if err != nil {
		return fmt.Errorf("%w: encoding report: %v", model.ErrIO, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: writing %s: %v", model.ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: writing %s: %v", model.ErrIO, path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	return nil
}

// LoadReport reads a report written by PersistReport.
func LoadReport(path string) (*model.ValidationReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	r := &model.ValidationReport{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, r)
	} else {
		err = json.Unmarshal(data, r)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", model.ErrIO, path, err)
	}
	return r, nil
}
