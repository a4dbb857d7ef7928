package render

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iliyamo/hirewire-superset/internal/config"
)

// Result describes a rendered file on disk.
type Result struct {
	Path    string
	SHA256  string
	Bytes   int
	Changed bool
}

// WriteFile renders s as superset_config.py at path. The file is replaced
// atomically (temp file in the same directory, then rename) and left alone
// when the content is unchanged.
func WriteFile(path string, s config.Settings) (Result, error) {
	var buf bytes.Buffer
	if err := Python(&buf, s); err != nil {
		return Result{}, err
	}
	sum := sha256.Sum256(buf.Bytes())
	res := Result{Path: path, SHA256: hex.EncodeToString(sum[:]), Bytes: buf.Len()}

	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, buf.Bytes()) {
		return res, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".superset_config-*.py")
	if err != nil {
		return Result{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return Result{}, fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	// The module holds SECRET_KEY and SMTP_PASSWORD.
	if err := tmp.Chmod(0o640); err != nil {
		_ = tmp.Close()
		return Result{}, fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Result{}, fmt.Errorf("rename to %s: %w", path, err)
	}
	res.Changed = true
	return res, nil
}
