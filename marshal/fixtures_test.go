package marshal

import (
	"github.com/wippyai/nvapi"
	"github.com/wippyai/nvapi/errors"
)

var (
	pointV1Layout = MustLayout("POINT_V1", 1,
		U32("x"),
		I32("y"),
		Bytes("name", 16),
		Bool32("on"),
		F32("scale"),
	)
	pointV2Layout = MustLayout("POINT_V2", 2,
		U32("x"),
		I32("y"),
		Bytes("name", 16),
		Bool32("on"),
		F32("scale"),
		U32("z"),
	)
	groupV1Layout = MustLayout("GROUP_V1", 1,
		U64("id"),
		U32("pointCount"),
		Ptr("points"),
		U16("flags"),
		U8("kind"),
	)
)

type pointV1 struct {
	Name  string
	X     uint32
	Y     int32
	Scale float32
	On    bool
}

func (p *pointV1) Layout() *Layout { return pointV1Layout }

func (p *pointV1) MarshalNative(e *Encoder) error {
	e.U32("x", p.X)
	e.I32("y", p.Y)
	e.String("name", p.Name)
	e.Bool32("on", p.On)
	e.F32("scale", p.Scale)
	return e.Err()
}

func (p *pointV1) UnmarshalNative(d *Decoder) error {
	p.X = d.U32("x")
	p.Y = d.I32("y")
	p.Name = d.String("name")
	p.On = d.Bool32("on")
	p.Scale = d.F32("scale")
	return d.Err()
}

type pointV2 struct {
	pointV1
	Z uint32
}

func (p *pointV2) Layout() *Layout { return pointV2Layout }

func (p *pointV2) MarshalNative(e *Encoder) error {
	_ = p.pointV1.MarshalNative(e)
	e.U32("z", p.Z)
	return e.Err()
}

func (p *pointV2) UnmarshalNative(d *Decoder) error {
	_ = p.pointV1.UnmarshalNative(d)
	p.Z = d.U32("z")
	return d.Err()
}

type groupV1 struct {
	Points []*pointV1
	ID     uint64
	Flags  uint16
	Kind   uint8
}

func (g *groupV1) Layout() *Layout { return groupV1Layout }

func (g *groupV1) MarshalNative(e *Encoder) error {
	e.U64("id", g.ID)
	e.U32("pointCount", uint32(len(g.Points)))
	EncodeChildren(e, "points", g.Points)
	e.U16("flags", g.Flags)
	e.U8("kind", g.Kind)
	return e.Err()
}

func (g *groupV1) UnmarshalNative(d *Decoder) error {
	g.ID = d.U64("id")
	n := d.U32("pointCount")
	g.Points = DecodeChildren(d, "points", n, func() *pointV1 { return &pointV1{} })
	g.Flags = d.U16("flags")
	g.Kind = d.U8("kind")
	return d.Err()
}

// failingAllocator fails every allocation after the first n.
type failingAllocator struct {
	inner nvapi.Allocator
	n     int
}

func (f *failingAllocator) Alloc(size, align uint32) (nvapi.Block, error) {
	if f.n <= 0 {
		return nil, errors.AllocationFailed(errors.PhaseNative, size, align)
	}
	f.n--
	return f.inner.Alloc(size, align)
}

func (f *failingAllocator) Free(b nvapi.Block) { f.inner.Free(b) }
