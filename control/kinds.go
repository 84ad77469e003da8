package control

import (
	"sync"

	"github.com/wippyai/nvapi/registry"
)

// Operation kinds of the default registry.
const (
	KindMemoryInfo         registry.OperationKind = "memory-info"
	KindColorData          registry.OperationKind = "color-data"
	KindHDRColorData       registry.OperationKind = "hdr-color-data"
	KindHDRCapabilities    registry.OperationKind = "hdr-capabilities"
	KindDVCInfo            registry.OperationKind = "dvc-info"
	KindDVCInfoEx          registry.OperationKind = "dvc-info-ex"
	KindDisplayConfig      registry.OperationKind = "display-config"
	KindScanoutInformation registry.OperationKind = "scanout-information"
	KindScanoutIntensity   registry.OperationKind = "scanout-intensity"
	KindScanoutWarping     registry.OperationKind = "scanout-warping"
)

var defaultRegistry = sync.OnceValues(func() (*registry.Registry, error) {
	return registry.New(
		memoryInfoCandidates,
		colorDataCandidates,
		hdrColorDataCandidates,
		hdrCapabilitiesCandidates,
		dvcInfoCandidates,
		dvcInfoExCandidates,
		displayConfigCandidates,
		scanoutInformationCandidates,
		scanoutIntensityCandidates,
		scanoutWarpingCandidates,
	)
})

// DefaultRegistry returns the registry of every operation this package
// implements. It is built once.
func DefaultRegistry() (*registry.Registry, error) {
	return defaultRegistry()
}
