package ingestor

import "sync"

// recordSlices recycles parse buffers between static runs
var recordSlices = sync.Pool{
	New: func() interface{} {
		slice := make([]Record, 0, 1024)
		return &slice
	},
}

// GetRecordSlice gets an empty record slice from the pool
func GetRecordSlice() []Record {
	slicePtr := recordSlices.Get().(*[]Record)
	return (*slicePtr)[:0] // Reset length while keeping capacity
}

// ReturnRecordSlice returns a record slice to the pool
func ReturnRecordSlice(slice []Record) {
	if cap(slice) < 1<<16 { // Prevent memory bloat
		clear(slice)
		emptySlice := slice[:0]
		recordSlices.Put(&emptySlice)
	}
}
