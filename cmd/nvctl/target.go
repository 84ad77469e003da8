package main

import (
	"fmt"
	"strconv"

	"github.com/wippyai/nvapi/control"
)

// displayID resolves a display argument: empty or "primary" for the OS
// primary, a number for a raw display id, anything else as an OS display
// name.
func displayID(c *control.Client, arg string) (control.DisplayID, error) {
	if arg == "" || arg == "primary" {
		return c.PrimaryDisplayID()
	}
	if n, err := strconv.ParseUint(arg, 0, 32); err == nil {
		return control.DisplayID(n), nil
	}
	return c.DisplayIDByName(arg)
}

// displayHandle resolves a display argument: empty for the first display,
// a small number as an index into the enumeration, anything else as an
// OS display name.
func displayHandle(c *control.Client, arg string) (control.DisplayHandle, error) {
	if arg != "" {
		idx, err := strconv.Atoi(arg)
		if err != nil {
			return c.DisplayHandleByName(arg)
		}
		handles, err := c.EnumDisplayHandles()
		if err != nil {
			return 0, err
		}
		if idx < 0 || idx >= len(handles) {
			return 0, fmt.Errorf("display index %d out of range (%d displays)", idx, len(handles))
		}
		return handles[idx], nil
	}
	handles, err := c.EnumDisplayHandles()
	if err != nil {
		return 0, err
	}
	if len(handles) == 0 {
		return 0, fmt.Errorf("no displays attached")
	}
	return handles[0], nil
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
