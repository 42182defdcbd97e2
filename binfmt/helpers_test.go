package binfmt

import (
	"bytes"

	"github.com/kyufie-go/hltool/diag"
)

func testSink() *diag.Sink {
	return diag.NewSink(&bytes.Buffer{}, true)
}
