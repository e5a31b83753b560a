package schedule

import (
	"github.com/ajroetker/blurconv/internal/fabric"
	"github.com/ajroetker/blurconv/internal/halo"
	"github.com/ajroetker/blurconv/internal/tile"
)

// Exchanger posts the eight-neighbor halo exchange for one rank's tile
// (spec.md §4.4, component C4), using the region geometry derived from the
// tile's own dimensions and the fixed tag discipline in internal/halo.
type Exchanger struct {
	fab       *fabric.Fabric
	self      int
	neighbors Neighbors

	rows, cols, bpp, stride int
}

// NewExchanger builds an Exchanger for a rank with the given tile geometry.
func NewExchanger(fab *fabric.Fabric, self int, neighbors Neighbors, rows, cols, bpp int) *Exchanger {
	return &Exchanger{
		fab:       fab,
		self:      self,
		neighbors: neighbors,
		rows:      rows,
		cols:      cols,
		bpp:       bpp,
		stride:    (cols + 2) * bpp,
	}
}

// region describes, for one direction, the byte offset of the region this
// rank sends from and the byte offset of the region it receives into,
// along with the wire descriptor shared by both ends (spec.md §4.4: "per
// neighbor slot ... post a non-blocking send of the corresponding edge/
// corner of src's interior and a non-blocking receive into the
// corresponding halo cell/slab").
func (e *Exchanger) region(d halo.Direction) (sendStart, recvStart int, desc halo.Descriptor) {
	off := func(i, j int) int { return i*e.stride + j*e.bpp }
	r, c := e.rows, e.cols

	switch d {
	case halo.North:
		return off(1, 1), off(0, 1), halo.RowDescriptor(c, e.bpp)
	case halo.South:
		return off(r, 1), off(r+1, 1), halo.RowDescriptor(c, e.bpp)
	case halo.West:
		return off(1, 1), off(1, 0), halo.ColDescriptor(r, e.bpp, e.stride)
	case halo.East:
		return off(1, c), off(1, c+1), halo.ColDescriptor(r, e.bpp, e.stride)
	case halo.NorthWest:
		return off(1, 1), off(0, 0), halo.CornerDescriptor(e.bpp)
	case halo.NorthEast:
		return off(1, c), off(0, c+1), halo.CornerDescriptor(e.bpp)
	case halo.SouthWest:
		return off(r, 1), off(r+1, 0), halo.CornerDescriptor(e.bpp)
	case halo.SouthEast:
		return off(r, c), off(r+1, c+1), halo.CornerDescriptor(e.bpp)
	default:
		panic("schedule: unknown direction")
	}
}

// PostAll posts a non-blocking send and receive for every present neighbor
// direction, reading/writing buf (the rank's current src buffer). It
// returns the outstanding handles split by kind, matching the scheduler's
// separate wait-for-receives-then-wait-for-sends ordering (spec.md §4.5).
func (e *Exchanger) PostAll(buf *tile.Buffer) (sends, recvs []*fabric.Handle) {
	raw := buf.Raw()
	for _, d := range halo.All() {
		nbr, ok := e.neighbors[d]
		if !ok {
			continue
		}
		sendStart, recvStart, desc := e.region(d)
		sends = append(sends, e.fab.PostSend(nbr, halo.SendTag(d), raw, sendStart, e.stride, desc))
		recvs = append(recvs, e.fab.PostRecv(e.self, halo.RecvTag(d), raw, recvStart, e.stride, desc))
	}
	return sends, recvs
}
