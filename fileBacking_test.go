package cogeotiff

import (
	"context"
	"os"
	"testing"
)

func TestFileBackingStoreReadRange(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "cogeotiff-*.tif")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	want := makeTestData(32)
	if _, err := f.Write(want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f.Close()

	store, err := NewFileBackingStore(f.Name())
	if err != nil {
		t.Fatalf("NewFileBackingStore: %v", err)
	}
	defer store.(*fileBackingStore).Close()

	ctx := context.Background()
	size, err := store.Size(ctx)
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != int64(len(want)) {
		t.Fatalf("expected size %d, got %d", len(want), size)
	}

	got, err := store.ReadRange(ctx, 8, 8)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	for i, v := range got {
		if v != want[8+i] {
			t.Errorf("byte %d: expected %d, got %d", i, want[8+i], v)
		}
	}
}

func TestFileBackingStoreReadRangeTruncatesAtEOF(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "cogeotiff-*.tif")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	data := makeTestData(10)
	if _, err := f.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f.Close()

	store, err := NewFileBackingStore(f.Name())
	if err != nil {
		t.Fatalf("NewFileBackingStore: %v", err)
	}
	defer store.(*fileBackingStore).Close()

	got, err := store.ReadRange(context.Background(), 5, 100)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 trailing bytes, got %d", len(got))
	}
}

func TestFileBackingStoreOffsetOutOfRange(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "cogeotiff-*.tif")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	f.Write(makeTestData(4))
	f.Close()

	store, err := NewFileBackingStore(f.Name())
	if err != nil {
		t.Fatalf("NewFileBackingStore: %v", err)
	}
	defer store.(*fileBackingStore).Close()

	_, err = store.ReadRange(context.Background(), 100, 4)
	if err == nil {
		t.Fatal("expected an out-of-range error")
	}
	if _, ok := err.(*OffsetOutOfRangeError); !ok {
		t.Errorf("expected *OffsetOutOfRangeError, got %T", err)
	}
}
