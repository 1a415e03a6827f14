// Package exclude decides which directories and files a header scan skips.
package exclude

import (
	"os"
	"path/filepath"
	"strings"
)

// AutoExcludeResult contains the directories to exclude and why.
type AutoExcludeResult struct {
	// Directories to exclude (relative to project root)
	Directories []string
	// Reasons maps each directory to why it was excluded
	Reasons map[string]string
}

// DetectAutoExcludes scans the project root for build trees and installed
// dependencies whose headers are copies or generated files. Only uses
// file existence checks. Nested projects are detected too
// (e.g. extern/fmt/build/CMakeCache.txt).
func DetectAutoExcludes(projectRoot string) *AutoExcludeResult {
	result := &AutoExcludeResult{
		Directories: []string{},
		Reasons:     make(map[string]string),
	}

	_ = filepath.WalkDir(projectRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip directories we can't read
		}
		if path == projectRoot {
			return nil
		}

		relPath, err := filepath.Rel(projectRoot, path)
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if contains(result.Directories, relPath) {
				return filepath.SkipDir
			}
			for _, excluded := range result.Directories {
				if strings.HasPrefix(relPath, excluded+string(filepath.Separator)) {
					return filepath.SkipDir
				}
			}

			dirName := d.Name()
			if strings.HasPrefix(dirName, ".") {
				return filepath.SkipDir
			}
			// Bazel output symlinks are excluded wholesale.
			if strings.HasPrefix(dirName, "bazel-") {
				result.add(relPath, "Bazel output tree (bazel-* symlink)")
				return filepath.SkipDir
			}
			return nil
		}

		relDirPath, err := filepath.Rel(projectRoot, filepath.Dir(path))
		if err != nil {
			return nil
		}
		sibling := func(name string) string {
			if relDirPath == "." {
				return name
			}
			return filepath.Join(relDirPath, name)
		}

		switch d.Name() {
		case "CMakeCache.txt":
			// The directory holding the cache is a CMake build tree.
			if relDirPath != "." {
				result.add(relDirPath, "CMake build tree (CMakeCache.txt detected)")
			}

		case "build.ninja":
			if relDirPath != "." {
				result.add(relDirPath, "Ninja build tree (build.ninja detected)")
			}

		case "meson.build":
			// Meson: builddir/ sibling if it was configured
			buildDir := sibling("builddir")
			if dirExists(filepath.Join(projectRoot, buildDir, "meson-private")) {
				result.add(buildDir, "Meson build tree (meson-private detected)")
			}

		case "vcpkg.json":
			installed := sibling("vcpkg_installed")
			if dirExists(filepath.Join(projectRoot, installed)) {
				result.add(installed, "vcpkg installed packages (vcpkg.json detected)")
			}

		case "conanfile.txt", "conanfile.py":
			conanDir := sibling("conan")
			if fileExists(filepath.Join(projectRoot, conanDir, "conaninfo.txt")) ||
				fileExists(filepath.Join(projectRoot, conanDir, "conanbuildinfo.txt")) {
				result.add(conanDir, "Conan generated files (conanfile detected)")
			}
		}

		return nil
	})

	return result
}

func (r *AutoExcludeResult) add(dir, reason string) {
	if contains(r.Directories, dir) {
		return
	}
	r.Directories = append(r.Directories, dir)
	r.Reasons[dir] = reason
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// contains checks if a string is in a slice.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
