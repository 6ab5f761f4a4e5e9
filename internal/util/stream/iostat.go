package stream

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

func IsTTY(fh io.Writer) bool {
	if f, isFh := fh.(*os.File); isFh {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

type Optimization struct {
	Name   string
	Action func(file *os.File, stat os.FileInfo) error
}
