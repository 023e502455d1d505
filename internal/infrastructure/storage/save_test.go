package storage

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"
)

func sampleSave() *SaveGame {
	kinds := make([]byte, 48)
	scent := make([]byte, 48)
	for i := range kinds {
		kinds[i] = byte(i % 5)
		scent[i] = byte(255 - i)
	}
	return &SaveGame{
		Seed:         0xDEADBEEF,
		MaxDepth:     12,
		MapW:         8,
		MapH:         6,
		CurrentDepth: 3,
		Sneak:        true,
		RngState:     0x1234ABCD,
		Floors: []FloorRecord{
			{
				Depth:    1,
				Width:    8,
				Height:   6,
				Kinds:    kinds,
				Explored: []byte{0xFF, 0x01, 0x00, 0x80, 0x55, 0x2A},
				Scent:    scent,
			},
			{Depth: 3, Width: 8, Height: 6, Kinds: make([]byte, 48), Explored: make([]byte, 6), Scent: make([]byte, 48)},
		},
	}
}

func TestWriteReadSave_RoundTrip(t *testing.T) {
	sg := sampleSave()

	var buf bytes.Buffer
	if err := WriteSave(&buf, sg); err != nil {
		t.Fatalf("WriteSave: %v", err)
	}

	got, err := ReadSave(&buf)
	if err != nil {
		t.Fatalf("ReadSave: %v", err)
	}

	if got.Seed != sg.Seed || got.MaxDepth != sg.MaxDepth ||
		got.MapW != sg.MapW || got.MapH != sg.MapH ||
		got.CurrentDepth != sg.CurrentDepth || got.Sneak != sg.Sneak ||
		got.RngState != sg.RngState {
		t.Fatalf("header fields mismatch: got %+v", got)
	}

	if len(got.Floors) != len(sg.Floors) {
		t.Fatalf("floors = %d, want %d", len(got.Floors), len(sg.Floors))
	}
	for i, fr := range got.Floors {
		want := sg.Floors[i]
		if fr.Depth != want.Depth || fr.Width != want.Width || fr.Height != want.Height {
			t.Errorf("floor %d header mismatch: %+v", i, fr)
		}
		if !bytes.Equal(fr.Kinds, want.Kinds) {
			t.Errorf("floor %d kinds mismatch", i)
		}
		if !bytes.Equal(fr.Explored, want.Explored) {
			t.Errorf("floor %d explored mismatch", i)
		}
		if !bytes.Equal(fr.Scent, want.Scent) {
			t.Errorf("floor %d scent mismatch", i)
		}
	}
}

func TestReadSave_RejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSave(&buf, sampleSave()); err != nil {
		t.Fatal(err)
	}

	raw := buf.Bytes()
	raw[0] = 'X'
	if _, err := ReadSave(bytes.NewReader(raw)); err == nil {
		t.Error("corrupted magic must fail")
	}
}

func TestReadSave_RejectsBadVersion(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSave(&buf, sampleSave()); err != nil {
		t.Fatal(err)
	}

	raw := buf.Bytes()
	binary.LittleEndian.PutUint32(raw[4:8], 999)
	if _, err := ReadSave(bytes.NewReader(raw)); err == nil {
		t.Error("unsupported version must fail")
	}
}

func TestReadSave_RejectsTruncatedStream(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSave(&buf, sampleSave()); err != nil {
		t.Fatal(err)
	}

	raw := buf.Bytes()
	for _, cut := range []int{3, 20, len(raw) - 7} {
		if _, err := ReadSave(bytes.NewReader(raw[:cut])); err == nil {
			t.Errorf("stream cut at %d must fail", cut)
		}
	}
}

func TestSaveService_DiskRoundTrip(t *testing.T) {
	dir := t.TempDir()
	svc := NewSaveService(filepath.Join(dir, "saves"))

	sg := sampleSave()
	path, err := svc.Save(sg)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := svc.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Seed != sg.Seed || len(got.Floors) != len(sg.Floors) {
		t.Errorf("disk round trip lost data: %+v", got)
	}
}
