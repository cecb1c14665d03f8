package trace

import (
	"errors"
	"io"
	"os"
	"syscall"
)

func isStdStream(w io.Writer) bool {
	return w == os.Stderr || w == os.Stdout
}

func isSyncUnsupported(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, os.ErrInvalid)
}
