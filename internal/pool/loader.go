package pool

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/Veraticus/feedgen/internal/common"
	"github.com/Veraticus/feedgen/internal/config"
)

// Load reads path as delimited text, skips the header row, and collects the
// first column of every remaining row.
func Load(name, path string) (*Pool, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", common.ErrMissingFile, path)
		}
		return nil, fmt.Errorf("%w: failed to open %s: %v", common.ErrIO, path, err)
	}
	defer file.Close()

	values, err := readFirstColumn(file)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", common.ErrIO, path, err)
	}

	p, err := New(name, values)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}

	slog.Debug("Loaded pool", "pool", name, "path", path, "entries", p.Len())
	return p, nil
}

func readFirstColumn(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var values []string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		values = append(values, row[0])
	}
	return values, nil
}

// LoadSet loads all four reference pools.
func LoadSet(paths config.InputPaths) (*Set, error) {
	positive, err := Load("positive", paths.Positive)
	if err != nil {
		return nil, err
	}
	neutral, err := Load("neutral", paths.Neutral)
	if err != nil {
		return nil, err
	}
	negative, err := Load("negative", paths.Negative)
	if err != nil {
		return nil, err
	}
	products, err := Load("products", paths.Products)
	if err != nil {
		return nil, err
	}

	return &Set{
		Positive: positive,
		Neutral:  neutral,
		Negative: negative,
		Products: products,
	}, nil
}
