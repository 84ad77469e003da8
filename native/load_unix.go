//go:build darwin || freebsd || linux || netbsd

package native

import (
	"runtime"

	"github.com/ebitengine/purego"
)

// DefaultLibrary is the driver module name on this platform.
func DefaultLibrary() string {
	if runtime.GOOS == "darwin" {
		return "libnvidia-api.dylib"
	}
	return "libnvidia-api.so.1"
}

func openLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
}

func symbol(lib uintptr, name string) (uintptr, error) {
	return purego.Dlsym(lib, name)
}

func closeLibrary(lib uintptr) error {
	return purego.Dlclose(lib)
}
