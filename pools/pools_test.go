package pools

import "testing"

func TestBucketPoolGetZeroed(t *testing.T) {
	bp := NewBucketPool(1024)

	table := bp.Get(100)
	if len(table) != 100 {
		t.Fatalf("expected length 100, got %d", len(table))
	}
	for i := range table {
		table[i] = i + 1
	}
	bp.Put(table)

	// whether or not the pool hands back the same table, it must be zeroed
	for i := 0; i < 10; i++ {
		again := bp.Get(50)
		for j, v := range again {
			if v != 0 {
				t.Fatalf("table entry %d = %d, want 0", j, v)
			}
		}
		bp.Put(again)
	}
}

func TestBucketPoolGrowsBeyondPooledCapacity(t *testing.T) {
	bp := NewBucketPool(1 << 20)
	table := bp.Get(10000)
	if len(table) != 10000 {
		t.Errorf("expected length 10000, got %d", len(table))
	}
	if got := bp.Get(0); len(got) != 0 {
		t.Errorf("expected empty table, got length %d", len(got))
	}
}

func TestBucketPoolDropsLargeTables(t *testing.T) {
	bp := NewBucketPool(16)
	bp.Put(make([]int, 32))
	bp.Put(nil)

	// a dropped table is never handed out again
	for i := 0; i < 10; i++ {
		if table := bp.Get(1); cap(table) == 32 {
			t.Fatalf("pool retained a table of capacity %d", cap(table))
		}
	}
}

func TestReset(t *testing.T) {
	Pools.Reset()
	table := Pools.GetBucketTable(8)
	if len(table) != 8 {
		t.Fatalf("expected length 8, got %d", len(table))
	}
	Pools.ReturnBucketTable(table)
	if Pools.BucketTables.maxKeep != 1<<20 {
		t.Errorf("Reset changed the retention limit to %d", Pools.BucketTables.maxKeep)
	}
}

func BenchmarkBucketTable(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		table := Pools.GetBucketTable(4096)
		table[i%4096]++
		Pools.ReturnBucketTable(table)
	}
}
