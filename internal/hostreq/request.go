// Package hostreq is the host-side collaborator the core scheduler
// expects per spec.md §3 and §6: it wraps one in-flight ublk
// descriptor as a scheduler.Handle, and carries the merge-hash and
// front/back-merge primitives a real block layer would supply.
package hostreq

import (
	"sync/atomic"

	"github.com/go-adios/adios/internal/scheduler"
	"github.com/go-adios/adios/internal/uapi"
)

// IORequest wraps one queue tag's descriptor as a scheduler.Handle.
// Its lifetime matches one fetch/commit cycle: built when a completion
// hands back a populated descriptor, discarded once that cycle's
// commit has been submitted.
type IORequest struct {
	tag      uint16
	desc     uapi.UblksrvIODesc
	byteLen  uint32
	submitNs int64

	startServiceNs atomic.Int64
	meta           *scheduler.RqData
}

// NewIORequest builds the handle for a descriptor read off tag,
// converting sector counts to bytes using blockSize.
func NewIORequest(tag uint16, desc uapi.UblksrvIODesc, blockSize int, submitNs int64) *IORequest {
	return &IORequest{
		tag:      tag,
		desc:     desc,
		byteLen:  uint32(desc.NrSectors) * uint32(blockSize),
		submitNs: submitNs,
	}
}

// Tag returns the queue tag this request was read from.
func (r *IORequest) Tag() uint16 { return r.tag }

// Desc returns the descriptor this request was built from.
func (r *IORequest) Desc() uapi.UblksrvIODesc { return r.desc }

// Op maps the descriptor's ublk opcode onto the scheduler's closed
// OpType enumeration; anything not READ/WRITE/DISCARD (flush, zone
// management, ...) is OTHER.
func (r *IORequest) Op() scheduler.OpType {
	switch r.desc.GetOp() {
	case uapi.UBLK_IO_OP_READ:
		return scheduler.OpRead
	case uapi.UBLK_IO_OP_WRITE:
		return scheduler.OpWrite
	case uapi.UBLK_IO_OP_DISCARD:
		return scheduler.OpDiscard
	default:
		return scheduler.OpOther
	}
}

func (r *IORequest) ByteLen() uint32      { return r.byteLen }
func (r *IORequest) SubmitTimeNs() int64  { return r.submitNs }
func (r *IORequest) StartServiceNs() int64 { return r.startServiceNs.Load() }

// SetStartServiceNs records when the host actually began servicing the
// request, called by the runner immediately before it calls the
// backend, matching "start-of-service timestamp (set by host when
// dispatch begins)" in spec.md §3.
func (r *IORequest) SetStartServiceNs(ns int64) { r.startServiceNs.Store(ns) }

func (r *IORequest) SchedMeta() *scheduler.RqData        { return r.meta }
func (r *IORequest) SetSchedMeta(d *scheduler.RqData)    { r.meta = d }

var _ scheduler.Handle = (*IORequest)(nil)
