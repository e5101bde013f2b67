package ingestor

import "testing"

func TestRecordSlicePool(t *testing.T) {
	slice := GetRecordSlice()
	if len(slice) != 0 {
		t.Fatalf("expected empty slice, got length %d", len(slice))
	}
	slice = append(slice, Record{Key: 7, Payload: "x"})
	ReturnRecordSlice(slice)

	again := GetRecordSlice()
	if len(again) != 0 {
		t.Errorf("expected reset slice, got length %d", len(again))
	}
	if full := again[:cap(again)]; len(full) > 0 && full[0].Payload != "" {
		t.Errorf("returned slice was not cleared: %+v", full[0])
	}
	ReturnRecordSlice(again)

	// oversized slices are not retained
	ReturnRecordSlice(make([]Record, 0, 1<<17))
}
