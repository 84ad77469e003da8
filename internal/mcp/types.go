package mcp

// DisplayInput selects a display by its index in ListDisplays output.
type DisplayInput struct {
	Display int `json:"display,omitempty" jsonschema:"Display index from list_displays (default: 0)"`
}

// DisplayIDInput selects a display by driver display id.
type DisplayIDInput struct {
	DisplayID uint32 `json:"display_id,omitempty" jsonschema:"Driver display id (default: the primary display)"`
}

// SetDVCInput is the input for the set_dvc tool.
type SetDVCInput struct {
	Display int   `json:"display,omitempty" jsonschema:"Display index from list_displays (default: 0)"`
	Level   int32 `json:"level" jsonschema:"required,Vibrance level within the range get_dvc reports"`
}

// Display describes one attached display.
type Display struct {
	Index     int    `json:"index"`
	Handle    string `json:"handle"`
	Name      string `json:"name"`
	DisplayID uint32 `json:"display_id,omitempty"`
}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []Display `json:"displays"`
}

// DVCOutput is the output for the get_dvc and set_dvc tools.
type DVCOutput struct {
	Display  int   `json:"display"`
	Current  int32 `json:"current"`
	Min      int32 `json:"min"`
	Max      int32 `json:"max"`
	Default  int32 `json:"default,omitempty"`
	Extended bool  `json:"extended"`
}

// ColorOutput is the output for the get_color tool.
type ColorOutput struct {
	DisplayID       uint32 `json:"display_id"`
	Layout          string `json:"layout"`
	Format          uint8  `json:"format"`
	Colorimetry     uint8  `json:"colorimetry"`
	DynamicRange    uint8  `json:"dynamic_range"`
	BPC             uint32 `json:"bpc"`
	SelectionPolicy uint32 `json:"selection_policy"`
	Depth           uint32 `json:"depth"`
}

// GPUMemory is the video memory of one GPU in KiB.
type GPUMemory struct {
	GPU              int    `json:"gpu"`
	Layout           string `json:"layout"`
	Dedicated        uint32 `json:"dedicated_kib"`
	Available        uint32 `json:"available_kib"`
	CurrentAvailable uint32 `json:"current_available_kib"`
}

// MemoryOutput is the output for the get_memory tool.
type MemoryOutput struct {
	GPUs []GPUMemory `json:"gpus"`
}
