// Command hltool extracts and reassembles the VFS archive format used by
// the legacy client: -x decodes an archive into a directory of editable
// sidecar files, -c packs that directory back into an archive.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/kyufie-go/hltool/diag"
	"github.com/kyufie-go/hltool/orchestrator"
)

const (
	progName = "hltool"
	progDesc = "Extract and reassemble VFS archives used by the legacy client."
)

func main() {
	var (
		extract bool
		create  bool
		file    string
		raw     bool
		quiet   bool
		version bool
	)

	flag.BoolVar(&extract, "x", false, "extract a VFS archive")
	flag.BoolVar(&extract, "extract", false, "extract a VFS archive")
	flag.BoolVar(&create, "c", false, "create a VFS archive")
	flag.BoolVar(&create, "create", false, "create a VFS archive")
	flag.StringVar(&file, "f", "", "use archive file ARCHIVE")
	flag.StringVar(&file, "file", "", "use archive file ARCHIVE")
	flag.BoolVar(&raw, "r", false, "only extract raw files")
	flag.BoolVar(&raw, "raw", false, "only extract raw files")
	flag.BoolVar(&quiet, "q", false, "do not log anything except warnings and errors")
	flag.BoolVar(&quiet, "quiet", false, "do not log anything except warnings and errors")
	flag.BoolVar(&version, "v", false, "output version information and exit")
	flag.BoolVar(&version, "version", false, "output version information and exit")

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, progDesc)
		fmt.Fprintf(os.Stderr, "\nUsage: %s [-x|-c] [-f ARCHIVE] [-r] [-q] [dir]\n\n", progName)
		flag.PrintDefaults()
	}
	flag.Parse()

	if version {
		printVersion()
		return
	}

	if extract && create {
		die("you may not specify more than one action (-xc)")
	}
	if !extract && !create {
		flag.Usage()
		os.Exit(1)
	}

	baseDir := "."
	if flag.NArg() > 0 {
		baseDir = flag.Arg(0)
	}

	sink := diag.NewSink(os.Stderr, quiet)

	var err error
	if extract {
		err = runExtract(file, baseDir, raw, sink)
	} else {
		err = runCreate(file, baseDir, sink)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
		os.Exit(1)
	}

	if sink.Count() > 0 {
		fmt.Printf("Program finished with %s\n", sink.Summary())
	}
}

func runExtract(file, baseDir string, raw bool, sink *diag.Sink) error {
	var src io.ReadSeeker
	if file == "" {
		// Stdin may be a pipe, which cannot seek; buffer it whole.
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		src = bytes.NewReader(data)
	} else {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}
	return orchestrator.Extract(src, baseDir, raw, sink)
}

func runCreate(file, baseDir string, sink *diag.Sink) error {
	var dst *os.File
	if file == "" {
		dst = os.Stdout
	} else {
		f, err := os.Create(file)
		if err != nil {
			return err
		}
		defer f.Close()
		dst = f
	}
	return orchestrator.Create(dst, baseDir, sink)
}

func die(msg string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", progName, msg)
	os.Exit(1)
}

func printVersion() {
	fmt.Println(progName, orchestrator.ToolVersion)
	fmt.Println("Copyright (C) 2026 kyufie-go")
	fmt.Println("License GPLv3+: GNU GPL version 3 or later <https://gnu.org/licenses/gpl.html>.")
	fmt.Println("This is free software: you are free to change and redistribute it.")
	fmt.Println("There is NO WARRANTY, to the extent permitted by law.")
}
