package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// HeaderSize is the byte length of the RIFF/fmt/data header this package writes.
const HeaderSize = 44

// Format describes the PCM layout of a WAV file.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// DefaultFormat is the capture format used for meeting audio.
func DefaultFormat() Format {
	return Format{SampleRate: 16000, Channels: 1, BitsPerSample: 16}
}

func (f Format) validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", f.SampleRate)
	}
	if f.Channels != 1 && f.Channels != 2 {
		return fmt.Errorf("unsupported channel count: %d", f.Channels)
	}
	if f.BitsPerSample != 16 {
		return fmt.Errorf("unsupported bit depth: %d (only 16-bit is supported)", f.BitsPerSample)
	}
	return nil
}

type riffHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // file size - 8
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16 // NumChannels * BitsPerSample / 8
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // bytes of PCM data
}

func encodeHeader(format Format, dataSize uint32) ([]byte, error) {
	header := riffHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   uint16(format.Channels),
		SampleRate:    uint32(format.SampleRate),
		ByteRate:      uint32(format.SampleRate) * uint32(format.Channels) * uint32(format.BitsPerSample) / 8,
		BlockAlign:    uint16(format.Channels) * uint16(format.BitsPerSample) / 8,
		BitsPerSample: uint16(format.BitsPerSample),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}
	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("encode wav header: %w", err)
	}
	return buf.Bytes(), nil
}

// Writer streams PCM data to a WAV file. The header carries placeholder sizes
// until Finalize patches them; a crash mid-write leaves the PCM payload intact
// for later repair.
type Writer struct {
	file      *os.File
	format    Format
	dataBytes uint32
	finalized bool
}

// Create opens path for writing and emits the WAV header.
func Create(path string, format Format) (*Writer, error) {
	if err := format.validate(); err != nil {
		return nil, err
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create wav file: %w", err)
	}
	header, err := encodeHeader(format, 0)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if _, err := file.Write(header); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("write wav header: %w", err)
	}
	return &Writer{file: file, format: format}, nil
}

// WriteSamples converts floating-point samples in [-1, 1] to 16-bit PCM and
// appends them. Values outside the range are clamped.
func (w *Writer) WriteSamples(samples []float32) error {
	if w.finalized {
		return fmt.Errorf("wav writer already finalized")
	}
	if len(samples) == 0 {
		return nil
	}
	buf := make([]byte, len(samples)*2)
	for i, sample := range samples {
		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}
		value := int16(sample * math.MaxInt16)
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(value))
	}
	if _, err := w.file.Write(buf); err != nil {
		return fmt.Errorf("write wav samples: %w", err)
	}
	w.dataBytes += uint32(len(buf))
	return nil
}

// DataBytes reports how many PCM payload bytes have been appended.
func (w *Writer) DataBytes() uint32 {
	return w.dataBytes
}

// Duration reports the audio length represented by the appended payload.
func (w *Writer) Duration() float64 {
	bytesPerSecond := w.format.SampleRate * w.format.Channels * w.format.BitsPerSample / 8
	if bytesPerSecond == 0 {
		return 0
	}
	return float64(w.dataBytes) / float64(bytesPerSecond)
}

// Finalize patches the header sizes, flushes, and closes the file. Calling it
// again is a no-op success.
func (w *Writer) Finalize() error {
	if w.finalized {
		return nil
	}
	header, err := encodeHeader(w.format, w.dataBytes)
	if err != nil {
		return err
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek wav header: %w", err)
	}
	if _, err := w.file.Write(header); err != nil {
		return fmt.Errorf("patch wav header: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("sync wav file: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close wav file: %w", err)
	}
	w.finalized = true
	return nil
}
