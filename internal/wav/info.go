package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// Info describes a WAV file's layout and length.
type Info struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	DataBytes     uint32
	Duration      float64
}

// Validate checks the RIFF structure of an encoded WAV file.
func Validate(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("wav data too short: need at least %d bytes, got %d", HeaderSize, len(data))
	}
	if string(data[0:4]) != "RIFF" {
		return fmt.Errorf("invalid wav file: missing RIFF header")
	}
	if string(data[8:12]) != "WAVE" {
		return fmt.Errorf("invalid wav file: missing WAVE format")
	}
	if string(data[12:16]) != "fmt " {
		return fmt.Errorf("invalid wav file: missing fmt chunk")
	}
	if string(data[36:40]) != "data" {
		return fmt.Errorf("invalid wav file: missing data chunk")
	}
	return nil
}

// ParseInfo extracts layout metadata from an encoded WAV file.
func ParseInfo(data []byte) (*Info, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var header riffHeader
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read wav header: %w", err)
	}
	if header.AudioFormat != 1 {
		return nil, fmt.Errorf("unsupported audio format: %d (only PCM is supported)", header.AudioFormat)
	}
	if header.SampleRate == 0 {
		return nil, fmt.Errorf("invalid sample rate: 0")
	}

	bytesPerSecond := header.SampleRate * uint32(header.NumChannels) * uint32(header.BitsPerSample) / 8
	info := &Info{
		SampleRate:    int(header.SampleRate),
		Channels:      int(header.NumChannels),
		BitsPerSample: int(header.BitsPerSample),
		DataBytes:     header.Subchunk2Size,
	}
	if bytesPerSecond > 0 {
		info.Duration = float64(header.Subchunk2Size) / float64(bytesPerSecond)
	}
	return info, nil
}

// ReadInfo loads a WAV file's header from disk.
func ReadInfo(path string) (*Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav file: %w", err)
	}
	defer file.Close()

	header := make([]byte, HeaderSize)
	if _, err := file.Read(header); err != nil {
		return nil, fmt.Errorf("read wav header: %w", err)
	}
	return ParseInfo(header)
}
