package scheduler

// Request is the opaque host handle the scheduler core consumes. The
// host I/O framework (bio construction, merging, hardware dispatch) is
// an external collaborator; the core only ever reads these four facts
// about a request.
type Request interface {
	// Op returns the operation type, derived by the host from its own
	// op flags.
	Op() OpType

	// ByteLen returns the total length of the request in bytes.
	ByteLen() uint32

	// SubmitTimeNs returns the monotonic submission timestamp in
	// nanoseconds.
	SubmitTimeNs() int64

	// StartServiceNs returns the monotonic timestamp at which the host
	// began servicing the request (set by the host at dispatch time),
	// or 0 if service has not started.
	StartServiceNs() int64
}

// Handle is a Request that additionally carries the scheduler's
// private metadata slot. Hosts implement this by embedding a *RqData
// field and exposing it through SchedMeta/SetSchedMeta; the scheduler
// never stores a Request in a side map, matching the "private pointer
// slot" attachment spec.md describes for the core's per-request state.
type Handle interface {
	Request
	SchedMeta() *RqData
	SetSchedMeta(*RqData)
}

// RqData is the scheduler's private per-request state, allocated at
// prepare-request and freed at finish-request.
type RqData struct {
	rq        Handle
	op        OpType
	deadline  uint64 // absolute ns deadline, valid only while dlGroup != nil
	predLat   uint64 // ns, the model's estimate used at insert time
	blockSize uint32 // bytes, captured at insert
	dlGroup   *DeadlineGroup
	elem      *dlElem // this RqData's node within dlGroup's list
}

// InIndex reports whether this request currently sits in the
// DeadlineIndex. It is false once dispatched, head-queued, or before
// first insertion.
func (d *RqData) InIndex() bool {
	return d != nil && d.dlGroup != nil
}

// Deadline returns the absolute deadline last computed for this
// request, valid only while InIndex is true (dispatching or
// head-queueing removes the request from the index but leaves the
// last-known deadline readable for diagnostics).
func (d *RqData) Deadline() uint64 {
	return d.deadline
}

// PredLat returns the predicted latency captured at insert time.
func (d *RqData) PredLat() uint64 {
	return d.predLat
}

// BlockSize returns the request's byte length captured at insert time.
func (d *RqData) BlockSize() uint32 {
	return d.blockSize
}
