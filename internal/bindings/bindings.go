//go:build !ios && !android && (amd64 || arm64)

// Package bindings locates and loads the libxml2 shared library with purego.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	"github.com/obinnaokechukwu/xmlgo/internal/logging"
	"github.com/obinnaokechukwu/xmlgo/internal/platform"
)

// ErrNotLoaded is returned when libxml2 functions are called before Load().
var ErrNotLoaded = errors.New("xmlgo: libxml2 not loaded; call xmlgo.Init() first")

// ErrLibraryNotFound is returned when libxml2 cannot be found.
var ErrLibraryNotFound = errors.New("xmlgo: libxml2 library not found")

// EnvLibraryPath names an explicit libxml2 file, or a directory to search
// before the platform defaults.
const EnvLibraryPath = "XMLGO_LIBRARY_PATH"

// Shared object versions to try, newest ABI first. libxml2 2.14 bumped the
// soname to 16.
var libXML2Versions = []int{16, 2}

var (
	libXML2 uintptr
	libPath string

	loaded   bool
	loadOnce sync.Once
	loadErr  error

	configMu      sync.Mutex
	explicitPath  string
	extraSearches []string
)

// Configure sets an explicit library file and extra directories to search.
// It only has an effect before the first Load.
func Configure(path string, searchPaths []string) {
	configMu.Lock()
	defer configMu.Unlock()
	explicitPath = path
	extraSearches = append([]string(nil), searchPaths...)
}

// IsLoaded returns true if libxml2 has been successfully loaded.
func IsLoaded() bool {
	return loaded
}

// Load loads libxml2. It is safe to call multiple times; subsequent calls
// return the first result.
func Load() error {
	loadOnce.Do(func() {
		loadErr = doLoad()
		if loadErr == nil {
			loaded = true
		}
	})
	return loadErr
}

func doLoad() error {
	log := logging.Logger()

	if path := explicitLibrary(); path != "" {
		lib, err := tryOpen(path)
		if err != nil {
			return fmt.Errorf("loading libxml2 from %s: %w", path, err)
		}
		libXML2, libPath = lib, path
	} else {
		lib, found, err := loadLibrary("xml2", libXML2Versions)
		if err != nil {
			return fmt.Errorf("loading libxml2: %w", err)
		}
		libXML2, libPath = lib, found
	}

	log.Debug("loaded libxml2", zap.String("path", libPath))
	return nil
}

// explicitLibrary returns the configured library file, overridden by
// XMLGO_LIBRARY_PATH when that names a file.
func explicitLibrary() string {
	configMu.Lock()
	path := explicitPath
	configMu.Unlock()
	if env := os.Getenv(EnvLibraryPath); env != "" {
		if fi, err := os.Stat(env); err == nil && !fi.IsDir() {
			path = env
		}
	}
	return path
}

// candidates lists the full paths tried for a library, versioned names
// before the unversioned one in each search directory.
func candidates(name string, versions []int) []string {
	var out []string
	for _, searchPath := range LibrarySearchPaths() {
		for _, ver := range versions {
			out = append(out, filepath.Join(searchPath, platform.FormatLibraryName(name, ver)))
		}
		out = append(out, filepath.Join(searchPath, platform.FormatLibraryName(name, 0)))
	}
	return out
}

// loadLibrary attempts to load a library by trying versioned names.
func loadLibrary(name string, versions []int) (uintptr, string, error) {
	for _, fullPath := range candidates(name, versions) {
		if lib, err := tryOpen(fullPath); err == nil {
			return lib, fullPath, nil
		}
	}

	// Try just the library name (let the system find it)
	for _, ver := range versions {
		libName := platform.FormatLibraryName(name, ver)
		if lib, err := tryOpen(libName); err == nil {
			return lib, libName, nil
		}
	}

	libName := platform.FormatLibraryName(name, 0)
	if lib, err := tryOpen(libName); err == nil {
		return lib, libName, nil
	}

	return 0, "", fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

func tryOpen(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// FindLibrary returns the libxml2 file Load would try first without
// opening it: the explicit path if one is set, else the first existing
// candidate in the search directories. It does not consult the dynamic
// loader's own cache, so a library found only by bare name is reported
// as not found.
func FindLibrary() (string, error) {
	if path := explicitLibrary(); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, path)
		}
		return path, nil
	}
	for _, fullPath := range candidates("xml2", libXML2Versions) {
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, nil
		}
	}
	return "", fmt.Errorf("%w: xml2", ErrLibraryNotFound)
}

// LibrarySearchPaths returns the directories searched for libxml2: the
// configured ones, then XMLGO_LIBRARY_PATH, then platform defaults.
func LibrarySearchPaths() []string {
	configMu.Lock()
	paths := append([]string(nil), extraSearches...)
	configMu.Unlock()

	if env := os.Getenv(EnvLibraryPath); env != "" {
		if fi, err := os.Stat(env); err == nil && fi.IsDir() {
			paths = append(paths, env)
		}
	}

	switch runtime.GOOS {
	case "linux":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
			"/usr/local/lib",
			"/usr/lib64",
			"/usr/lib",
			"/lib/x86_64-linux-gnu",
			"/lib",
		)

	case "darwin":
		if dyldPath := os.Getenv("DYLD_LIBRARY_PATH"); dyldPath != "" {
			paths = append(paths, filepath.SplitList(dyldPath)...)
		}
		paths = append(paths,
			"/opt/homebrew/opt/libxml2/lib", // Homebrew keg (Apple Silicon)
			"/usr/local/opt/libxml2/lib",    // Homebrew keg (Intel)
			"/opt/homebrew/lib",
			"/usr/local/lib",
			"/usr/lib",
		)

	case "windows":
		if winPath := os.Getenv("PATH"); winPath != "" {
			paths = append(paths, filepath.SplitList(winPath)...)
		}
		if exe, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Dir(exe))
		}
		paths = append(paths,
			"C:\\msys64\\mingw64\\bin",
			"C:\\vcpkg\\installed\\x64-windows\\bin",
		)

	case "freebsd":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/local/lib",
			"/usr/lib",
		)
	}

	return paths
}

// Lib returns the libxml2 library handle, or 0 if not loaded.
func Lib() uintptr {
	return libXML2
}

// Path returns the file libxml2 was loaded from.
func Path() string {
	return libPath
}

// Symbol returns the address of a libxml2 global (for example the xmlFree
// function pointer variable).
func Symbol(name string) (uintptr, error) {
	if !loaded {
		return 0, ErrNotLoaded
	}
	return purego.Dlsym(libXML2, name)
}
