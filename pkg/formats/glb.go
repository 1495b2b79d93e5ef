// Package formats provides parsers for the binary glTF (GLB) container and its JSON manifest.
// GLB (binary glTF) container framing.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/Faultbox/midgard-glb/pkg/encoding"
)

// GLB container constants.
const (
	GLBMagic     uint32 = 0x46546C67 // "glTF"
	GLBVersion   uint32 = 2
	GLBChunkJSON uint32 = 0x4E4F534A // "JSON"
	GLBChunkBIN  uint32 = 0x004E4942 // "BIN\0"

	glbHeaderSize      = 12
	glbChunkHeaderSize = 8
)

// GLB format errors.
var (
	ErrInvalidGLBMagic       = errors.New("invalid GLB magic: expected 'glTF'")
	ErrUnsupportedGLBVersion = errors.New("unsupported GLB version")
	ErrTruncatedGLBData      = errors.New("truncated GLB data")
	ErrChunkOverrun          = errors.New("GLB chunk runs past declared length")
	ErrMissingJSONChunk      = errors.New("GLB has no JSON chunk")
)

// GLBHeader is the fixed 12-byte header at the start of every GLB file.
type GLBHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32 // Total file length in bytes, header included
}

// GLBChunkHeader precedes every chunk payload.
type GLBChunkHeader struct {
	Length uint32
	Type   uint32
}

// GLB represents a framed GLB container.
type GLB struct {
	Header  GLBHeader
	JSON    string // Manifest text (UTF-8)
	BIN     []byte // Binary payload, nil when the file has no BIN chunk
	Skipped int    // Number of chunks with an unrecognised type
}

// HasBIN returns true if the container carried a BIN chunk.
func (g *GLB) HasBIN() bool {
	return g.BIN != nil
}

// ParseGLB splits GLB data into its JSON manifest and binary payload.
// Chunks with unknown types are skipped by length. When a JSON or BIN chunk
// appears more than once the later one wins.
func ParseGLB(data []byte) (*GLB, error) {
	if len(data) < glbHeaderSize {
		return nil, ErrTruncatedGLBData
	}

	r := bytes.NewReader(data)

	glb := &GLB{}
	if err := binary.Read(r, binary.LittleEndian, &glb.Header); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrTruncatedGLBData, err)
	}

	if glb.Header.Magic != GLBMagic {
		return nil, ErrInvalidGLBMagic
	}
	if glb.Header.Version != GLBVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedGLBVersion, glb.Header.Version)
	}

	total := uint64(glb.Header.Length)
	if total > uint64(len(data)) {
		return nil, fmt.Errorf("%w: header declares %d bytes, have %d", ErrTruncatedGLBData, total, len(data))
	}

	var jsonData []byte
	for offset := uint64(glbHeaderSize); offset < total; {
		if offset+glbChunkHeaderSize > total {
			return nil, fmt.Errorf("%w: chunk header at offset %d", ErrChunkOverrun, offset)
		}

		var ch GLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &ch); err != nil {
			return nil, fmt.Errorf("%w: chunk header at offset %d: %v", ErrTruncatedGLBData, offset, err)
		}

		start := offset + glbChunkHeaderSize
		end := start + uint64(ch.Length)
		if end > total {
			return nil, fmt.Errorf("%w: chunk at offset %d has length %d, container is %d bytes",
				ErrChunkOverrun, offset, ch.Length, total)
		}

		payload := data[start:end]
		switch ch.Type {
		case GLBChunkJSON:
			jsonData = payload
		case GLBChunkBIN:
			glb.BIN = payload
		default:
			glb.Skipped++
		}

		if _, err := r.Seek(int64(end), 0); err != nil {
			return nil, fmt.Errorf("seeking past chunk: %w", err)
		}
		offset = end
	}

	if jsonData == nil {
		return nil, ErrMissingJSONChunk
	}

	text, err := encoding.DecodeJSONChunk(jsonData)
	if err != nil {
		return nil, fmt.Errorf("decoding JSON chunk: %w", err)
	}
	glb.JSON = text

	return glb, nil
}

// ParseGLBFile parses a GLB file from disk.
func ParseGLBFile(path string) (*GLB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GLB file: %w", err)
	}
	return ParseGLB(data)
}

// EncodeGLB builds a GLB container from a manifest and an optional binary
// payload. Chunks are padded to 4-byte alignment, JSON with spaces and BIN
// with zeros. Used by tooling that writes test assets.
func EncodeGLB(manifest []byte, bin []byte) []byte {
	jsonChunk := pad4(manifest, ' ')
	total := glbHeaderSize + glbChunkHeaderSize + len(jsonChunk)

	var binChunk []byte
	if bin != nil {
		binChunk = pad4(bin, 0)
		total += glbChunkHeaderSize + len(binChunk)
	}

	buf := bytes.NewBuffer(make([]byte, 0, total))
	binary.Write(buf, binary.LittleEndian, GLBHeader{Magic: GLBMagic, Version: GLBVersion, Length: uint32(total)})
	binary.Write(buf, binary.LittleEndian, GLBChunkHeader{Length: uint32(len(jsonChunk)), Type: GLBChunkJSON})
	buf.Write(jsonChunk)
	if bin != nil {
		binary.Write(buf, binary.LittleEndian, GLBChunkHeader{Length: uint32(len(binChunk)), Type: GLBChunkBIN})
		buf.Write(binChunk)
	}
	return buf.Bytes()
}

func pad4(data []byte, fill byte) []byte {
	out := make([]byte, len(data), (len(data)+3)&^3)
	copy(out, data)
	for len(out)%4 != 0 {
		out = append(out, fill)
	}
	return out
}
