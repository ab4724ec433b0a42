package hostreq

import (
	"sync"

	"github.com/go-adios/adios/internal/scheduler"
)

// mergeKey identifies requests that are contiguous on the backing
// store and share an operation type, the minimum a real block layer
// needs before attempting a bio merge.
type mergeKey struct {
	op    scheduler.OpType
	start uint64 // sector immediately following the candidate's last sector
}

// MergeHash is a minimal stand-in for the host's merge hash (spec.md
// §6's "add/remove from merge hash"): it lets a newly submitted
// request find an existing one it can be back-merged into by sector
// adjacency. Front-merge detection (a request arriving before an
// already-queued one) is symmetric but not implemented here since
// ublk's fixed-size descriptors never arrive out of LBA order within
// a queue in this harness.
type MergeHash struct {
	mu    sync.Mutex
	byEnd map[mergeKey]*IORequest
}

// NewMergeHash returns an empty hash.
func NewMergeHash() *MergeHash {
	return &MergeHash{byEnd: make(map[mergeKey]*IORequest)}
}

// TryMerge implements scheduler.Merger: it looks for a queued request
// whose range ends exactly where rq begins and, if found, extends that
// request's byte length to absorb rq instead of admitting rq as a
// second entry. The absorbed IORequest is never returned as
// "redundant" here because absorption happens in place; merged_requests
// only matters when two already-distinct RqData must be collapsed,
// which this single-process simulation harness does not exercise.
func (h *MergeHash) TryMerge(rq scheduler.Handle) (bool, scheduler.Handle) {
	ioReq, ok := rq.(*IORequest)
	if !ok {
		return false, nil
	}
	key := mergeKey{op: ioReq.Op(), start: startSector(ioReq)}

	h.mu.Lock()
	defer h.mu.Unlock()

	existing, ok := h.byEnd[key]
	if !ok {
		h.register(ioReq)
		return false, nil
	}

	existing.desc.NrSectors += ioReq.desc.NrSectors
	existing.byteLen += ioReq.byteLen
	delete(h.byEnd, key)
	h.register(existing)
	return true, nil
}

// register records ioReq as back-mergeable by a request that starts
// where it ends.
func (h *MergeHash) register(ioReq *IORequest) {
	end := ioReq.desc.StartSector + uint64(ioReq.desc.NrSectors)
	h.byEnd[mergeKey{op: ioReq.Op(), start: end}] = ioReq
}

func startSector(r *IORequest) uint64 { return r.desc.StartSector }

var _ scheduler.Merger = (*MergeHash)(nil)
