// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/gabriel-vasile/mimetype"
)

// iconDirEntry mirrors an on-disk ICONDIRENTRY/CURSORDIRENTRY: the
// per-image metadata an .ico/.cur container's directory carries
// (grounded on the teacher's icon.go RsrcDirEntry-shaped resource
// walking, which this repurposes for .ico file ingestion rather than PE
// resource-section traversal).
type iconDirEntry struct {
	Width, Height      byte
	ColorCount         byte
	Reserved           byte
	Planes, BitCount   uint16
	BytesInRes         uint32
	ImageOffset        uint32
}

// loadIconOrCursorFile memory-maps path, validates the ICONDIR/CURSORDIR
// header (reserved field 0, type 1 for icons or 2 for cursors; the
// mimetype sniff result does not affect that check), and splits it into
// its directory
// entries plus the raw image bytes for each (spec.md §4.5 "icons and
// cursors are read from an external file and re-split into RT_ICON /
// RT_GROUP_ICON records").
func loadIconOrCursorFile(path string, isCursor bool) (entries []iconDirEntry, images [][]byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("rc: opening icon/cursor file: %w", err)
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("rc: mapping icon/cursor file: %w", err)
	}
	defer data.Unmap()

	mt := mimetype.Detect(data)
	wantType := uint16(1)
	if isCursor {
		wantType = 2
	}
	if mt.Is("image/x-icon") || mt.Is("application/octet-stream") {
		// mimetype's x-icon detector does not distinguish ICO from CUR;
		// fall through to the directory's own rtype field below.
	}

	if len(data) < 6 {
		return nil, nil, fmt.Errorf("rc: icon/cursor file too short")
	}
	reserved := binary.LittleEndian.Uint16(data[0:2])
	rtype := binary.LittleEndian.Uint16(data[2:4])
	count := binary.LittleEndian.Uint16(data[4:6])
	if reserved != 0 || rtype != wantType {
		return nil, nil, fmt.Errorf("rc: not a valid %s file", containerName(isCursor))
	}

	off := 6
	const entrySize = 16
	dirEntries := make([]iconDirEntry, 0, count)
	for i := 0; i < int(count); i++ {
		if off+entrySize > len(data) {
			return nil, nil, fmt.Errorf("rc: truncated icon/cursor directory")
		}
		e := iconDirEntry{
			Width:       data[off+0],
			Height:      data[off+1],
			ColorCount:  data[off+2],
			Reserved:    data[off+3],
			Planes:      binary.LittleEndian.Uint16(data[off+4 : off+6]),
			BitCount:    binary.LittleEndian.Uint16(data[off+6 : off+8]),
			BytesInRes:  binary.LittleEndian.Uint32(data[off+8 : off+12]),
			ImageOffset: binary.LittleEndian.Uint32(data[off+12 : off+16]),
		}
		dirEntries = append(dirEntries, e)
		off += entrySize
	}

	images = make([][]byte, 0, count)
	for _, e := range dirEntries {
		start := int(e.ImageOffset)
		end := start + int(e.BytesInRes)
		if start < 0 || end > len(data) || start > end {
			return nil, nil, fmt.Errorf("rc: icon/cursor image out of bounds")
		}
		img := make([]byte, end-start)
		copy(img, data[start:end])
		images = append(images, img)
	}

	return dirEntries, images, nil
}

func containerName(isCursor bool) string {
	if isCursor {
		return "CUR"
	}
	return "ICO"
}

// compileGroupIcon synthesizes the RT_GROUP_ICON/RT_GROUP_CURSOR
// directory: the same ICONDIR header followed by GRPICONDIRENTRY
// records (14 bytes each — an ICONDIRENTRY with its 4-byte file offset
// replaced by a 2-byte RT_ICON resource ordinal), per spec.md §4.5.
func compileGroupIcon(entries []iconDirEntry, iconIDs []uint16, isCursor bool) []byte {
	rtype := uint16(1)
	if isCursor {
		rtype = 2
	}
	buf := make([]byte, 0, 6+14*len(entries))
	var hdr [6]byte
	binary.LittleEndian.PutUint16(hdr[2:4], rtype)
	binary.LittleEndian.PutUint16(hdr[4:6], uint16(len(entries)))
	buf = append(buf, hdr[:]...)

	for i, e := range entries {
		var rec [14]byte
		rec[0] = e.Width
		rec[1] = e.Height
		rec[2] = e.ColorCount
		rec[3] = e.Reserved
		binary.LittleEndian.PutUint16(rec[4:6], e.Planes)
		binary.LittleEndian.PutUint16(rec[6:8], e.BitCount)
		binary.LittleEndian.PutUint32(rec[8:12], e.BytesInRes)
		binary.LittleEndian.PutUint16(rec[12:14], iconIDs[i])
		buf = append(buf, rec[:]...)
	}
	return buf
}

// loadFileBytes memory-maps and copies the raw bytes of a plain
// file-sourced resource body: BITMAP, FONT, MESSAGETABLE, HTML, MANIFEST
// (spec.md §4.5 "raw file resources").
func loadFileBytes(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rc: opening resource file: %w", err)
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("rc: mapping resource file: %w", err)
	}
	defer data.Unmap()

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// loadBitmapFile strips the 14-byte BITMAPFILEHEADER rc.exe discards
// when compiling a BITMAP resource, leaving the BITMAPINFOHEADER-onward
// bytes the RT_BITMAP format actually stores (spec.md §4.5).
func loadBitmapFile(path string) ([]byte, error) {
	data, err := loadFileBytes(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 14 || data[0] != 'B' || data[1] != 'M' {
		return nil, fmt.Errorf("rc: not a valid BMP file")
	}
	return data[14:], nil
}
