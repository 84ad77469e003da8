//go:build windows

package native

import (
	"strconv"
	"syscall"
)

// DefaultLibrary is the driver module name on this platform.
func DefaultLibrary() string {
	if strconv.IntSize == 64 {
		return "nvapi64.dll"
	}
	return "nvapi.dll"
}

// purego has no Dlopen on windows; load through syscall.LoadDLL instead.
func openLibrary(path string) (uintptr, error) {
	dll, err := syscall.LoadDLL(path)
	if err != nil {
		return 0, err
	}
	return uintptr(dll.Handle), nil
}

func symbol(lib uintptr, name string) (uintptr, error) {
	return syscall.GetProcAddress(syscall.Handle(lib), name)
}

func closeLibrary(lib uintptr) error {
	return syscall.FreeLibrary(syscall.Handle(lib))
}
