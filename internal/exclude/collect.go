package exclude

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CollectHeaders expands paths into the header files to load. Files named
// directly are kept whatever their extension. Directories are walked,
// skipping hidden entries, auto-detected build trees and anything matching
// patterns; only files whose extension is in extensions are returned.
// The result is sorted and free of duplicates.
func CollectHeaders(paths, extensions, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	keep := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			keep(root)
			continue
		}

		auto := DetectAutoExcludes(root)
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path == root {
					return nil
				}
				rel := getRelativePath(path, root)
				if contains(auto.Directories, rel) || ShouldExcludeDir(path, root, patterns) {
					return filepath.SkipDir
				}
				return nil
			}
			if !hasExtension(path, extensions) || ShouldExcludeFile(path, root, patterns) {
				return nil
			}
			keep(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func hasExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	for _, e := range extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// ShouldExcludeDir checks if a directory should be excluded from scanning
func ShouldExcludeDir(path, basePath string, patterns []string) bool {
	relPath := getRelativePath(path, basePath)

	// Always exclude hidden directories
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") && base != "." {
		return true
	}

	for _, pattern := range patterns {
		dirPattern := strings.TrimSuffix(pattern, "/**")
		dirPattern = strings.TrimSuffix(dirPattern, "/*")

		// Simple directory name match
		if base == dirPattern || relPath == dirPattern {
			return true
		}

		if matched, _ := filepath.Match(dirPattern, relPath); matched {
			return true
		}

		// "**/name" matches name at any depth
		if matched, _ := filepath.Match(strings.TrimPrefix(dirPattern, "**/"), base); matched {
			return true
		}
	}

	return false
}

// ShouldExcludeFile checks if a file should be excluded from scanning
func ShouldExcludeFile(path, basePath string, patterns []string) bool {
	relPath := getRelativePath(path, basePath)
	base := filepath.Base(path)

	// Always exclude hidden files
	if strings.HasPrefix(base, ".") {
		return true
	}

	for _, pattern := range patterns {
		// Handle ** patterns by checking the filename
		if strings.Contains(pattern, "**") {
			simplePattern := strings.ReplaceAll(pattern, "**/", "")
			simplePattern = strings.ReplaceAll(simplePattern, "**", "")

			if simplePattern != "" {
				if matched, _ := filepath.Match(simplePattern, base); matched {
					return true
				}
			}
		}

		if matched, _ := filepath.Match(pattern, relPath); matched {
			return true
		}

		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}

func getRelativePath(path, basePath string) string {
	rel, err := filepath.Rel(basePath, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
