package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// writeFile writes data to path, creating the file exclusively unless force
// is set. A partially written file is removed so output is all-or-nothing.
func writeFile(ctx context.Context, path string, data []byte, force bool) errors.E {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644) //nolint:gomnd
	if err != nil {
		return errors.WithDetails(err, "path", path)
	}

	_, err = f.Write(data)
	if err1 := f.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		if err2 := os.Remove(path); err2 != nil {
			zerolog.Ctx(ctx).Error().Err(err2).Msg("unable to remove output file after error")
		}
		return errors.WithDetails(err, "path", path)
	}

	return nil
}
