// Package notebook strips outputs, execution counts and metadata from
// Jupyter notebooks so they diff cleanly under version control.
package notebook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const checkpointDir = ".ipynb_checkpoints"

var (
	rawNull        = json.RawMessage("null")
	rawEmptyList   = json.RawMessage("[]")
	rawEmptyObject = json.RawMessage("{}")
)

// Find returns every *.ipynb under root, skipping checkpoint directories.
func Find(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.Contains(path, checkpointDir) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".ipynb") {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

// CleanFile rewrites one notebook in place: top-level metadata becomes {},
// and every cell that has them gets execution_count null and outputs [].
// Key order is preserved.
func CleanFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := Clean(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return os.WriteFile(path, out, info.Mode().Perm())
}

// Clean returns the scrubbed form of a notebook document, indented with
// four spaces.
func Clean(raw []byte) ([]byte, error) {
	var nb object
	if err := json.Unmarshal(raw, &nb); err != nil {
		return nil, err
	}
	nb.set("metadata", rawEmptyObject)

	cellsRaw, ok := nb.get("cells")
	if !ok {
		return nil, errors.New(`notebook has no "cells"`)
	}
	var cells []object
	if err := json.Unmarshal(cellsRaw, &cells); err != nil {
		return nil, fmt.Errorf("cells: %w", err)
	}
	for i := range cells {
		cells[i].replace("execution_count", rawNull)
		cells[i].replace("outputs", rawEmptyList)
	}
	b, err := marshalCells(cells)
	if err != nil {
		return nil, err
	}
	nb.set("cells", b)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(nb); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// CleanAll cleans every notebook under root and returns how many were
// rewritten. The first failure stops the walk.
func CleanAll(root string) (int, error) {
	files, err := Find(root)
	if err != nil {
		return 0, err
	}
	for i, f := range files {
		if err := CleanFile(f); err != nil {
			return i, err
		}
	}
	return len(files), nil
}

func marshalCells(cells []object) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, c := range cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := c.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
