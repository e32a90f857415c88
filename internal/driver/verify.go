package driver

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/Platinum-Technologie/disktest/internal/observability"
)

// ReadTarget is the subset of *os.File the verify driver needs.
type ReadTarget interface {
	io.Reader
	io.Seeker
}

// MismatchError carries the absolute byte offset of the first
// differing byte found during a verify run.
type MismatchError struct {
	Offset uint64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("data mismatch at byte %d", e.Offset)
}

// VerifyDriver seeks the device and compares its contents against
// aggregated chunks until maxBytes is consumed, EOF is reached, or a
// mismatch is found.
type VerifyDriver struct {
	File    ReadTarget
	Source  ChunkSource
	Logger  *observability.Logger
	Metrics *observability.Metrics
}

// VerifyResult summarizes a completed verify run.
type VerifyResult struct {
	BytesVerified uint64
}

// Run seeks to seek and verifies up to maxBytes bytes (Unbounded for
// "to device end", i.e. until EOF), or until ctx is cancelled.
func (d *VerifyDriver) Run(ctx context.Context, seek, maxBytes uint64) (VerifyResult, error) {
	if _, err := d.File.Seek(int64(seek), io.SeekStart); err != nil {
		return VerifyResult{}, fmt.Errorf("seek to %d: %w", seek, err)
	}

	chunkSize := d.Source.ChunkSize()
	buf := make([]byte, chunkSize)

	bytesLeft := maxBytes
	var bytesVerified uint64
	var logCount uint64

	for bytesLeft > 0 {
		readLen := uint64(chunkSize)
		if bytesLeft != Unbounded && bytesLeft < readLen {
			readLen = bytesLeft
		}

		readCount, err := io.ReadFull(d.File, buf[:readLen])
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return VerifyResult{BytesVerified: bytesVerified}, fmt.Errorf("read error at %s: %w", humanize.IBytes(bytesVerified), err)
		}
		if readCount == 0 {
			break
		}

		chunk, err := nextChunk(ctx, d.Source)
		if err != nil {
			return VerifyResult{BytesVerified: bytesVerified}, err
		}
		for i := 0; i < readCount; i++ {
			if buf[i] != chunk.Data[i] {
				offset := bytesVerified + uint64(i)
				if d.Logger != nil {
					d.Logger.Mismatch(offset)
				}
				if d.Metrics != nil {
					d.Metrics.MismatchesTotal.Inc()
				}
				return VerifyResult{BytesVerified: bytesVerified}, &MismatchError{Offset: offset}
			}
		}

		bytesVerified += uint64(readCount)
		if bytesLeft != Unbounded {
			bytesLeft -= uint64(readCount)
		}
		if d.Metrics != nil {
			d.Metrics.BytesVerifiedTotal.Add(float64(readCount))
		}

		logCount += uint64(readCount)
		if logCount >= logThreshold {
			if d.Logger != nil {
				d.Logger.Progress("verify", bytesVerified, humanize.IBytes(bytesVerified))
			}
			logCount -= logThreshold
		}

		if readCount < int(readLen) {
			// Short read: end of device.
			break
		}
	}

	return VerifyResult{BytesVerified: bytesVerified}, nil
}
