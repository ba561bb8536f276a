// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/emulator"
	"github.com/ezrec/ls8/io"
)

func main() {
	var compile string
	var save bool
	var output string
	var verbose bool
	var limit int

	flag.StringVar(&compile, "c", "", ".asm file to compile instead of loading a program image")
	flag.BoolVar(&save, "s", false, "Save the program image to output, do not execute")
	flag.StringVar(&output, "o", "-", "Program output")
	flag.BoolVar(&verbose, "v", false, "Verbose mode, traces every instruction")
	flag.IntVar(&limit, "n", 0, "Maximum instructions to execute (0 for no limit)")

	flag.Parse()

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	if len(compile) != 0 {
		if flag.NArg() != 0 {
			log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
		}

		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		emu.Program, err = emu.Assembler().Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		emu.Rom.Data = emu.Program.Binary()
	} else {
		if flag.NArg() != 1 {
			log.Fatalf("usage: %v [options] program.ls8", os.Args[0])
		}

		path, err := filepath.Abs(flag.Arg(0))
		if err != nil {
			log.Fatalf("%v: %v", flag.Arg(0), err)
		}

		rom, err := io.LoadRom(os.DirFS(filepath.Dir(path)), filepath.Base(path), cpu.MEMORY_SIZE)
		if err != nil {
			log.Fatal(err)
		}
		emu.Rom = *rom
	}

	out := os.Stdout
	if output != "-" {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		out = ouf
	}

	if save {
		_, err := emu.Rom.WriteTo(out)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	emu.Tape.Output = out

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	err = emu.Run(limit)
	if err != nil {
		log.Fatal(err)
	}
}
