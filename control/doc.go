// Package control binds the driver's display and GPU control entry points.
//
// Each operation is declared as a set of versioned structs, newest first,
// registered under an operation kind in DefaultRegistry. Client runs them
// through the dispatch protocols, so callers get the newest version the
// installed driver accepts:
//
//	drv, err := native.Open("")
//	if err != nil {
//		return err
//	}
//	defer drv.Close()
//
//	c, err := control.New(drv)
//	if err != nil {
//		return err
//	}
//	if err := c.Initialize(); err != nil {
//		return err
//	}
//	primary, _ := c.PrimaryDisplayID()
//	cd, err := c.ColorData(primary)
//
// Versioned values are returned through small interfaces (MemoryInfo,
// ColorData, PathInfo). Type switch on the concrete version for fields
// the interface does not expose.
package control
