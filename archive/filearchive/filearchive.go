// Copyright 2023 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package filearchive provides an implementation of asntransform.Archive
// that is based on the file system. Each result is stored in its own file,
// named after its key.
//
// Files are spread over sub-directories named after the next-to-last two
// characters of the key, so that no single directory grows too large when
// keys are content identifiers.
package filearchive

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bufbuild/asntransform"
	"github.com/bufbuild/asntransform/archive"
)

// Config represents the configuration parameters used to
// create a new file-system-backed archive.
type Config struct {
	// Required: the folder in which archived files live.
	Path string
	// Defaults to ".bin" if left empty. This is added to the
	// key to form a file name.
	FilenameExtension string
	// The mode to use when creating new files in the archive
	// directory. Defaults to 0600 if left zero. If not left
	// as default, the mode must have at least bits 0400 and
	// 0200 (read and write permissions for owner) set.
	FileMode fs.FileMode
}

// New creates a new file-system-backed archive with the given
// configuration.
func New(config Config) (asntransform.Archive, error) {
	// validate config
	if config.Path == "" {
		return nil, errors.New("path cannot be empty")
	}
	path, err := filepath.Abs(config.Path)
	if err != nil {
		return nil, err
	}
	config.Path = path
	if config.FilenameExtension == "" {
		config.FilenameExtension = ".bin"
	} else if !strings.HasPrefix(config.FilenameExtension, ".") {
		config.FilenameExtension = "." + config.FilenameExtension
	}
	if config.FileMode == 0 {
		config.FileMode = 0600
	} else if (config.FileMode & 0600) != 0600 {
		return nil, fmt.Errorf("mode %#o must include bits 0600", config.FileMode)
	}

	// make sure we can write files to the archive directory
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", path)
	}
	testFile := filepath.Join(path, ".test")
	file, err := os.OpenFile(testFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("insufficient permission to create file in %s", path)
		}
		return nil, fmt.Errorf("failed to create file in %s: %w", path, err)
	}
	closeErr := file.Close()
	rmErr := os.Remove(testFile)
	if closeErr != nil {
		return nil, closeErr
	} else if rmErr != nil {
		return nil, rmErr
	}

	return (*fileArchive)(&config), nil
}

type fileArchive Config

func (a *fileArchive) Load(_ context.Context, key string) ([]byte, error) {
	fileName, err := a.fileNameForKey(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fileName)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, archive.ErrNotFound)
	}
	return data, err
}

// Save writes to a temporary file first, so a reader never sees a partly
// written result.
func (a *fileArchive) Save(_ context.Context, key string, data []byte) error {
	fileName, err := a.fileNameForKey(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(fileName)
	if err := os.MkdirAll(dir, dirMode(a.FileMode)); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".save-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(a.FileMode); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), fileName)
}

func (a *fileArchive) fileNameForKey(key string) (string, error) {
	if key == "" {
		return "", errors.New("key cannot be empty")
	}
	name := sanitize(key)
	return filepath.Join(a.Path, shard(name), name+a.FilenameExtension), nil
}

// dirMode grants search permission wherever mode grants read.
func dirMode(mode fs.FileMode) fs.FileMode {
	mode |= 0700
	return mode | (mode&0044)>>2
}

// shard names the sub-directory of a file: the next-to-last two characters
// of its name, or "_" for names too short to have them.
func shard(name string) string {
	if len(name) < 3 {
		return "_"
	}
	return name[len(name)-3 : len(name)-1]
}

func sanitize(s string) string {
	var builder strings.Builder
	hexWriter := hex.NewEncoder(&builder)
	var buf [1]byte
	for i, length := 0, len(s); i < length; i++ {
		char := s[i]
		switch {
		case char >= 'a' && char <= 'z',
			char >= 'A' && char <= 'Z',
			char >= '0' && char <= '9',
			char == '-' || char == '_':
			builder.WriteByte(char)
		default:
			builder.WriteByte('%')
			buf[0] = char
			_, _ = hexWriter.Write(buf[:])
		}
	}
	return builder.String()
}
