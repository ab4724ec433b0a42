package scheduler

// fakeHandle is a minimal Handle for exercising the scheduler core
// without a real ublk request.
type fakeHandle struct {
	op             OpType
	byteLen        uint32
	submitNs       int64
	startServiceNs int64
	meta           *RqData
}

func (h *fakeHandle) Op() OpType             { return h.op }
func (h *fakeHandle) ByteLen() uint32        { return h.byteLen }
func (h *fakeHandle) SubmitTimeNs() int64    { return h.submitNs }
func (h *fakeHandle) StartServiceNs() int64  { return h.startServiceNs }
func (h *fakeHandle) SchedMeta() *RqData     { return h.meta }
func (h *fakeHandle) SetSchedMeta(d *RqData) { h.meta = d }

var _ Handle = (*fakeHandle)(nil)
