package pools

import "sync"

// BucketPool recycles bucket tables between sort calls.
// Tables larger than maxKeep entries are dropped on return instead of retained.
type BucketPool struct {
	pool    sync.Pool
	maxKeep int
}

// NewBucketPool creates a bucket table pool that retains tables of up to maxKeep entries
func NewBucketPool(maxKeep int) *BucketPool {
	return &BucketPool{
		pool: sync.Pool{
			New: func() interface{} {
				table := make([]int, 0, 256)
				return &table
			},
		},
		maxKeep: maxKeep,
	}
}

// Get returns a zeroed table of length k.
// Panics like make does when k cannot be allocated; callers recover.
func (bp *BucketPool) Get(k int) []int {
	tablePtr := bp.pool.Get().(*[]int)
	table := *tablePtr
	if cap(table) < k {
		// Let the small one go back for someone else
		bp.pool.Put(tablePtr)
		return make([]int, k)
	}
	table = table[:k]
	clear(table)
	return table
}

// Put returns a table to the pool
func (bp *BucketPool) Put(table []int) {
	if table == nil || cap(table) > bp.maxKeep {
		return
	}
	emptyTable := table[:0]
	bp.pool.Put(&emptyTable)
}

// GlobalPools provides centralized memory pooling for the sorters
type GlobalPools struct {
	BucketTables *BucketPool
}

// Pools is the global instance of memory pools
var Pools = &GlobalPools{
	BucketTables: NewBucketPool(1 << 20),
}

// GetBucketTable gets a zeroed bucket table of length k
func (gp *GlobalPools) GetBucketTable(k int) []int {
	return gp.BucketTables.Get(k)
}

// ReturnBucketTable returns a bucket table to the pool
func (gp *GlobalPools) ReturnBucketTable(table []int) {
	gp.BucketTables.Put(table)
}

// Reset clears all pools (useful for testing)
func (gp *GlobalPools) Reset() {
	gp.BucketTables = NewBucketPool(gp.BucketTables.maxKeep)
}
