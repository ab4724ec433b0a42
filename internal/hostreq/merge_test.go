package hostreq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-adios/adios/internal/uapi"
)

func newReadReq(startSector uint64, nrSectors uint32) *IORequest {
	desc := uapi.UblksrvIODesc{
		OpFlags:     uapi.UBLK_IO_OP_READ,
		StartSector: startSector,
		NrSectors:   nrSectors,
	}
	return NewIORequest(0, desc, 512, 0)
}

func TestMergeHashFirstRequestRegistersOnly(t *testing.T) {
	h := NewMergeHash()
	a := newReadReq(0, 8)

	merged, redundant := h.TryMerge(a)

	assert.False(t, merged)
	assert.Nil(t, redundant)
}

func TestMergeHashBackMergesAdjacentRequest(t *testing.T) {
	h := NewMergeHash()
	a := newReadReq(0, 8)
	_, _ = h.TryMerge(a)

	b := newReadReq(8, 4)
	merged, redundant := h.TryMerge(b)

	require.True(t, merged)
	assert.Nil(t, redundant)
	assert.EqualValues(t, 12, a.desc.NrSectors)
	assert.EqualValues(t, a.byteLen, 12*512)
}

func TestMergeHashDoesNotMergeNonAdjacentRequests(t *testing.T) {
	h := NewMergeHash()
	a := newReadReq(0, 8)
	_, _ = h.TryMerge(a)

	b := newReadReq(100, 4)
	merged, _ := h.TryMerge(b)

	assert.False(t, merged)
}

func TestMergeHashDoesNotMergeAcrossOpTypes(t *testing.T) {
	h := NewMergeHash()
	a := newReadReq(0, 8)
	_, _ = h.TryMerge(a)

	writeDesc := uapi.UblksrvIODesc{OpFlags: uapi.UBLK_IO_OP_WRITE, StartSector: 8, NrSectors: 4}
	b := NewIORequest(0, writeDesc, 512, 0)

	merged, _ := h.TryMerge(b)
	assert.False(t, merged)
}

func TestMergeHashChainsThreeContiguousRequests(t *testing.T) {
	h := NewMergeHash()
	a := newReadReq(0, 8)
	_, _ = h.TryMerge(a)
	_, _ = h.TryMerge(newReadReq(8, 8))

	merged, _ := h.TryMerge(newReadReq(16, 8))

	require.True(t, merged)
	assert.EqualValues(t, 24, a.desc.NrSectors)
}
