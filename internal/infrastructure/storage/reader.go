package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Load читает снимок забега с диска.
func (s *SaveService) Load(path string) (*SaveGame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadSave(f)
}

// Защита от поврежденных заголовков: этаж больше этого не бывает.
const maxBlobLen = 1 << 24

// ReadSave десериализует снимок из потока.
func ReadSave(r io.Reader) (*SaveGame, error) {
	var header SaveFileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if string(header.Magic[:]) != MagicHeader {
		return nil, fmt.Errorf("invalid magic")
	}
	if header.Version != Version1 {
		return nil, fmt.Errorf("unsupported version: %d (expected %d)", header.Version, Version1)
	}
	if header.FloorCount < 0 || header.FloorCount > 1024 {
		return nil, fmt.Errorf("implausible floor count: %d", header.FloorCount)
	}

	sg := &SaveGame{
		Seed:         header.Seed,
		MaxDepth:     header.MaxDepth,
		MapW:         header.MapW,
		MapH:         header.MapH,
		CurrentDepth: header.CurrentDepth,
		Sneak:        header.Sneak != 0,
		RngState:     header.RngState,
		Floors:       make([]FloorRecord, header.FloorCount),
	}

	for i := 0; i < int(header.FloorCount); i++ {
		var fh FloorRecordHeader
		if err := binary.Read(r, binary.LittleEndian, &fh); err != nil {
			return nil, err
		}
		if fh.KindsLen > maxBlobLen || fh.ExploredLen > maxBlobLen || fh.ScentLen > maxBlobLen {
			return nil, fmt.Errorf("implausible floor record at %d", i)
		}

		fr := FloorRecord{Depth: fh.Depth, Width: fh.Width, Height: fh.Height}

		readBlob := func(n uint32) ([]byte, error) {
			if n == 0 {
				return nil, nil
			}
			buf := make([]byte, n)
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, err
			}
			return buf, nil
		}

		var err error
		if fr.Kinds, err = readBlob(fh.KindsLen); err != nil {
			return nil, err
		}
		if fr.Explored, err = readBlob(fh.ExploredLen); err != nil {
			return nil, err
		}
		if fr.Scent, err = readBlob(fh.ScentLen); err != nil {
			return nil, err
		}

		sg.Floors[i] = fr
	}

	return sg, nil
}
