package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	MagicHeader string = `DDSV` // 4 байта
	Version1    uint32 = 1
)

// SaveGame - плоский снимок забега. Тайлы и разведка сохраняются как есть,
// комнаты и лестницы не сохраняются: они восстанавливаются перегенерацией
// по сиду, а поверх накатываются сохраненные тайлы (двери, раскопки).
type SaveGame struct {
	Seed         uint32
	MaxDepth     int32
	MapW         int32
	MapH         int32
	CurrentDepth int32
	Sneak        bool
	RngState     uint32

	Floors []FloorRecord
}

// FloorRecord - один закешированный этаж.
type FloorRecord struct {
	Depth    int32
	Width    int32
	Height   int32
	Kinds    []byte // по байту на тайл
	Explored []byte // битовая карта
	Scent    []byte // по байту на тайл
}

// SaveFileHeader - точное представление заголовка файла в памяти.
// binary.Write пишет его целиком: только числа фиксированной ширины.
type SaveFileHeader struct {
	Magic        [4]byte
	Version      uint32
	Seed         uint32
	MaxDepth     int32
	MapW         int32
	MapH         int32
	CurrentDepth int32
	Sneak        uint8
	_            [3]byte // выравнивание
	RngState     uint32
	FloorCount   int32
}

// FloorRecordHeader - заголовок каждой записи этажа.
type FloorRecordHeader struct {
	Depth       int32
	Width       int32
	Height      int32
	KindsLen    uint32
	ExploredLen uint32
	ScentLen    uint32
}

// SaveService пишет и читает снимки забегов на диске.
type SaveService struct {
	SaveDir string
}

func NewSaveService(dir string) *SaveService {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		_ = os.Mkdir(dir, 0755)
	}
	return &SaveService{SaveDir: dir}
}

// Save пишет снимок в каталог сейвов и возвращает путь к файлу.
func (s *SaveService) Save(sg *SaveGame) (string, error) {
	filename := fmt.Sprintf("run_%d_depth%d.ddsv", sg.Seed, sg.CurrentDepth)
	path := filepath.Join(s.SaveDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteSave(f, sg); err != nil {
		return "", err
	}
	return path, nil
}

// WriteSave сериализует снимок в поток.
func WriteSave(w io.Writer, sg *SaveGame) error {
	header := SaveFileHeader{
		Version:      Version1,
		Seed:         sg.Seed,
		MaxDepth:     sg.MaxDepth,
		MapW:         sg.MapW,
		MapH:         sg.MapH,
		CurrentDepth: sg.CurrentDepth,
		RngState:     sg.RngState,
		FloorCount:   int32(len(sg.Floors)),
	}
	if sg.Sneak {
		header.Sneak = 1
	}
	copy(header.Magic[:], MagicHeader)

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, fr := range sg.Floors {
		fh := FloorRecordHeader{
			Depth:       fr.Depth,
			Width:       fr.Width,
			Height:      fr.Height,
			KindsLen:    uint32(len(fr.Kinds)),
			ExploredLen: uint32(len(fr.Explored)),
			ScentLen:    uint32(len(fr.Scent)),
		}
		if err := binary.Write(w, binary.LittleEndian, &fh); err != nil {
			return err
		}
		for _, blob := range [][]byte{fr.Kinds, fr.Explored, fr.Scent} {
			if len(blob) == 0 {
				continue
			}
			if _, err := w.Write(blob); err != nil {
				return err
			}
		}
	}

	return nil
}
