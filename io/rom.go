package io

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
)

// Rom is a program image, one byte per address starting at 0.
type Rom struct {
	Data []uint8
}

// ReadRom parses a program image from its text encoding.
//
// Each non-blank line holds an 8 digit binary literal, optionally followed
// by a '#' comment. Blank and comment-only lines are skipped. An image with
// more than capacity bytes is rejected with ErrRomSize.
func ReadRom(r io.Reader, capacity int) (rom *Rom, err error) {
	scanner := bufio.NewScanner(r)

	rom = &Rom{}

	var lineno int
	for scanner.Scan() {
		lineno++
		text, _, _ := strings.Cut(scanner.Text(), "#")
		text = strings.TrimSpace(text)
		if len(text) == 0 {
			continue
		}

		if len(text) != 8 {
			err = &ErrRomSyntax{LineNo: lineno, Line: text}
			return
		}

		var value uint64
		value, err = strconv.ParseUint(text, 2, 8)
		if err != nil {
			err = &ErrRomSyntax{LineNo: lineno, Line: text}
			return
		}

		rom.Data = append(rom.Data, uint8(value))
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if len(rom.Data) > capacity {
		err = &ErrRomCapacity{Size: len(rom.Data), Capacity: capacity}
		return
	}

	return
}

// LoadRom reads a program image from a file system.
func LoadRom(fsys fs.FS, name string, capacity int) (rom *Rom, err error) {
	inf, err := fsys.Open(name)
	if err != nil {
		return
	}
	defer inf.Close()

	rom, err = ReadRom(inf, capacity)
	if err != nil {
		err = fmt.Errorf("%v: %w", name, err)
		return
	}

	return
}

// WriteTo writes the image in its text encoding.
func (rc *Rom) WriteTo(w io.Writer) (n int64, err error) {
	bw := bufio.NewWriter(w)
	for _, value := range rc.Data {
		var wrote int
		wrote, err = fmt.Fprintf(bw, "%08b\n", value)
		n += int64(wrote)
		if err != nil {
			return
		}
	}

	err = bw.Flush()
	return
}
