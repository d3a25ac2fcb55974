package sink

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/Veraticus/feedgen/internal/common"
	"github.com/Veraticus/feedgen/internal/model"
	"github.com/pierrec/lz4/v4"
)

// ErrHeaderMismatch is returned when a file's header differs from model.Header.
var ErrHeaderMismatch = errors.New("header mismatch")

// lz4Magic is the little-endian lz4 frame magic number 0x184D2204.
var lz4Magic = []byte{0x04, 0x22, 0x4D, 0x18}

// CSVOptions configures a CSVWriter.
type CSVOptions struct {
	// OnRow is called after each data row is encoded.
	OnRow func()
	// Compress frames the output with lz4.
	Compress bool
}

// CSVWriter writes records as comma-separated UTF-8 text with a header row.
type CSVWriter struct {
	onRow    func()
	path     string
	compress bool
}

// NewCSVWriter returns a writer targeting path.
func NewCSVWriter(path string, opts CSVOptions) *CSVWriter {
	return &CSVWriter{
		path:     path,
		compress: opts.Compress,
		onRow:    opts.OnRow,
	}
}

// Path returns the output path.
func (w *CSVWriter) Path() string {
	return w.path
}

// Write creates or truncates the output file and writes the header and one
// row per record in the order given. The parent directory must exist. A
// failure part way through leaves a truncated file behind.
func (w *CSVWriter) Write(ctx context.Context, records []model.Record) (err error) {
	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", common.ErrIO, w.path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: failed to close %s: %v", common.ErrIO, w.path, closeErr)
		}
	}()

	var out io.Writer = file
	var lzWriter *lz4.Writer
	if w.compress {
		lzWriter = lz4.NewWriter(file)
		out = lzWriter
	}

	if err := w.encode(ctx, out, records); err != nil {
		return err
	}

	if lzWriter != nil {
		if err := lzWriter.Close(); err != nil {
			return fmt.Errorf("%w: failed to finish lz4 frame: %v", common.ErrIO, err)
		}
	}

	slog.Debug("Wrote output file", "path", w.path, "rows", len(records), "lz4", w.compress)
	return nil
}

func (w *CSVWriter) encode(ctx context.Context, out io.Writer, records []model.Record) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(model.Header); err != nil {
		return fmt.Errorf("%w: failed to write header: %v", common.ErrIO, err)
	}

	for i, r := range records {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := writer.Write(r.Row()); err != nil {
			return fmt.Errorf("%w: failed to write row %d: %v", common.ErrIO, i+1, err)
		}
		if w.onRow != nil {
			w.onRow()
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("%w: failed to flush: %v", common.ErrIO, err)
	}
	return nil
}

// ReadRecords reads a file produced by CSVWriter, plain or lz4 framed, and
// checks that its header matches model.Header exactly.
func ReadRecords(path string) ([]model.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", common.ErrIO, path, err)
	}
	defer file.Close()

	reader, err := maybeDecompress(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrIO, path, err)
	}

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = len(model.Header)
	csvReader.ReuseRecord = true

	header, err := csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s is empty", ErrHeaderMismatch, path)
		}
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	if !slices.Equal(header, model.Header) {
		return nil, fmt.Errorf("%w: got %v", ErrHeaderMismatch, header)
	}

	var records []model.Record
	for line := 2; ; line++ {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		r, err := model.ParseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		records = append(records, r)
	}

	return records, nil
}

func maybeDecompress(r *bufio.Reader) (io.Reader, error) {
	magic, err := r.Peek(len(lz4Magic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if slices.Equal(magic, lz4Magic) {
		return lz4.NewReader(r), nil
	}
	return r, nil
}
