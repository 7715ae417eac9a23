package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ProjectDirName is the per-project metadata directory.
const ProjectDirName = ".cred"

// FindProjectCredRoot traverses up from start to find the directory holding .cred.
// Returns the project root if found, empty string otherwise.
// Stops searching at the filesystem root or one level above the user's home directory.
func FindProjectCredRoot(start string) (string, error) {
	currentDir := start
	if currentDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		currentDir = wd
	}

	currentDir, err := filepath.Abs(currentDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}

	stopAt := ""
	if homeDir, err := os.UserHomeDir(); err == nil {
		stopAt = filepath.Dir(homeDir)
	}

	for {
		if stopAt != "" && currentDir == stopAt {
			return "", nil
		}

		credDir := filepath.Join(currentDir, ProjectDirName)
		fileInfo, err := os.Stat(credDir)
		if err == nil {
			if fileInfo.IsDir() {
				return currentDir, nil
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("error checking for %s directory at %s: %w", ProjectDirName, currentDir, err)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", nil
		}
		currentDir = parentDir
	}
}

// WriteFileAtomic writes data to a temporary file in the same directory,
// syncs it and renames it over path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	committed = true
	return nil
}

// EnsureGitignoreEntry appends entry to root/.gitignore unless a line
// already matches it. Reports whether the file was changed.
func EnsureGitignoreEntry(root, entry string) (bool, error) {
	path := filepath.Join(root, ".gitignore")

	content, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == entry {
			return false, nil
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	prefix := ""
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		prefix = "\n"
	}
	if _, err := f.WriteString(prefix + entry + "\n"); err != nil {
		return false, err
	}
	return true, nil
}
