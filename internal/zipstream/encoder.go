// Package zipstream writes a ZIP archive of a directory tree incrementally
// to an output sink while reporting per-file progress to an operation
// registry. Files are streamed in bounded chunks; archive/zip defers CRC-32
// and sizes to data descriptors, so nothing but per-entry metadata is held
// across the archive.
package zipstream

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
	"github.com/serve-folder/backend/internal/fsutil"
)

// DefaultChunkSize is the copy buffer size for streaming file contents.
const DefaultChunkSize = 64 * 1024

// ProgressSink receives progress updates for an operation. Satisfied by
// *operation.Registry.
type ProgressSink interface {
	Update(id string, processed int, currentFile string)
	MarkSkipped(id string)
	Complete(id string, success bool)
}

// Encoder streams directory trees as ZIP archives.
type Encoder struct {
	chunkSize int
	level     int
}

// NewEncoder creates an encoder with the given copy buffer size in bytes and
// deflate compression level. Non-positive arguments select the defaults.
func NewEncoder(chunkSize, level int) *Encoder {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if level <= 0 || level > flate.BestCompression {
		level = flate.DefaultCompression
	}
	return &Encoder{chunkSize: chunkSize, level: level}
}

// Encode walks dirAbs and writes a ZIP archive of it to sink, calling
// progress.Update after each file and progress.Complete when done. Entries
// appear in deterministic walk order; empty directories are preserved. An
// unreadable file is skipped and noted rather than aborting the archive, but
// any sink failure (including a client disconnect) or context cancellation
// aborts immediately, leaving a truncated archive on the wire and the
// operation marked failed.
func (e *Encoder) Encode(ctx context.Context, dirAbs string, sink io.Writer, opID string, progress ProgressSink) (err error) {
	defer func() {
		progress.Complete(opID, err == nil)
	}()

	zw := zip.NewWriter(sink)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, e.level)
	})

	buf := make([]byte, e.chunkSize)
	processed := 0
	flusher, canFlush := sink.(interface{ Flush() })

	err = fsutil.Walk(dirAbs, func(entry fsutil.Entry) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		if entry.IsDir {
			hdr := &zip.FileHeader{
				Name:     entry.RelPath + "/",
				Modified: entry.ModTime,
			}
			if _, herr := zw.CreateHeader(hdr); herr != nil {
				return fmt.Errorf("writing directory entry %s: %w", entry.RelPath, herr)
			}
			return nil
		}

		f, oerr := os.Open(entry.AbsPath)
		if oerr != nil {
			// Unreadable file: note it and keep going.
			progress.MarkSkipped(opID)
			processed++
			progress.Update(opID, processed, entry.RelPath)
			return nil
		}

		hdr := &zip.FileHeader{
			Name:     entry.RelPath,
			Modified: entry.ModTime,
			Method:   zip.Deflate,
		}
		w, herr := zw.CreateHeader(hdr)
		if herr != nil {
			f.Close()
			return fmt.Errorf("writing header for %s: %w", entry.RelPath, herr)
		}

		_, cerr := io.CopyBuffer(w, f, buf)
		f.Close()
		if cerr != nil {
			return fmt.Errorf("streaming %s: %w", entry.RelPath, cerr)
		}

		processed++
		progress.Update(opID, processed, entry.RelPath)
		if canFlush {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Central directory and end-of-central-directory records.
	if err = zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}
