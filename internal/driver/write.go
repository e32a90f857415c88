package driver

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/Platinum-Technologie/disktest/internal/device"
	"github.com/Platinum-Technologie/disktest/internal/observability"
)

// WriteTarget is the subset of *os.File the write driver needs, so
// tests can exercise the no-space path without a real full disk.
type WriteTarget interface {
	io.Writer
	io.Seeker
	Sync() error
}

// WriteDriver seeks the device and writes aggregated chunks to it until
// maxBytes is consumed or a fatal write error occurs.
type WriteDriver struct {
	File    WriteTarget
	Source  ChunkSource
	Logger  *observability.Logger
	Metrics *observability.Metrics
}

// WriteResult summarizes a completed write run.
type WriteResult struct {
	BytesWritten uint64
	// NoSpace is true if the run terminated because the device ran out
	// of space, which is a successful outcome rather than a fatal error.
	NoSpace bool
}

// Run seeks to seek and writes up to maxBytes bytes (Unbounded for "to
// device end"), returning once done, out of space, cancelled via ctx, or
// a fatal error.
func (d *WriteDriver) Run(ctx context.Context, seek, maxBytes uint64) (WriteResult, error) {
	if _, err := d.File.Seek(int64(seek), io.SeekStart); err != nil {
		return WriteResult{}, fmt.Errorf("seek to %d: %w", seek, err)
	}

	bytesLeft := maxBytes
	var bytesWritten uint64
	var logCount uint64

	chunkSize := d.Source.ChunkSize()

	for bytesLeft > 0 {
		chunk, err := nextChunk(ctx, d.Source)
		if err != nil {
			return WriteResult{BytesWritten: bytesWritten}, err
		}

		writeLen := uint64(chunkSize)
		if bytesLeft < writeLen {
			writeLen = bytesLeft
		}
		data := chunk.Data
		if uint64(len(data)) > writeLen {
			data = data[:writeLen]
		}

		if _, err := d.File.Write(data); err != nil {
			if device.IsNoSpace(err) {
				if d.Logger != nil {
					d.Logger.NoSpace(bytesWritten, humanize.IBytes(bytesWritten))
				}
				return WriteResult{BytesWritten: bytesWritten, NoSpace: true}, nil
			}
			return WriteResult{BytesWritten: bytesWritten}, fmt.Errorf("write error at %s: %w", humanize.IBytes(bytesWritten), err)
		}

		bytesWritten += uint64(len(data))
		if bytesLeft != Unbounded {
			bytesLeft -= uint64(len(data))
		}
		if d.Metrics != nil {
			d.Metrics.BytesWrittenTotal.Add(float64(len(data)))
		}

		logCount += uint64(len(data))
		if logCount >= logThreshold {
			if d.Logger != nil {
				d.Logger.Progress("write", bytesWritten, humanize.IBytes(bytesWritten))
			}
			logCount -= logThreshold
		}
	}

	if err := d.File.Sync(); err != nil {
		return WriteResult{BytesWritten: bytesWritten}, fmt.Errorf("sync failed: %w", err)
	}
	return WriteResult{BytesWritten: bytesWritten}, nil
}
