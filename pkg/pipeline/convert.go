package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/matzehuels/celltower/pkg/celltower"
	apperrors "github.com/matzehuels/celltower/pkg/errors"
	"github.com/matzehuels/celltower/pkg/source/ofcom"
)

// DetectSource tells an OFCOM export from an interchange dataset by its
// top-level keys.
func DetectSource(data []byte) (string, error) {
	var probe struct {
		Features   json.RawMessage `json:"features"`
		CellTowers json.RawMessage `json:"celltowers"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "input is not a JSON object")
	}
	switch {
	case probe.CellTowers != nil:
		return SourceDataset, nil
	case probe.Features != nil:
		return SourceOFCOM, nil
	default:
		return "", apperrors.New(apperrors.ErrCodeInvalidFormat, "input has neither \"features\" nor \"celltowers\"")
	}
}

// ConvertBytes turns a raw document into a dataset.
func ConvertBytes(data []byte, source string, opts Options) (*celltower.Dataset, error) {
	if source == "" || source == SourceAuto {
		var err error
		if source, err = DetectSource(data); err != nil {
			return nil, err
		}
	}

	switch source {
	case SourceOFCOM:
		fc, err := ofcom.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return ofcom.Convert(fc, ofcom.Options{Name: opts.Name, Lang: opts.Lang})
	case SourceDataset:
		d, err := celltower.UnmarshalDataset(data)
		if err != nil {
			return nil, err
		}
		if opts.Name != "" {
			d.Name = opts.Name
		}
		return d, nil
	default:
		return nil, ValidateSource(source)
	}
}

// load returns the raw input document.
func (r *Runner) load(ctx context.Context, opts Options) ([]byte, error) {
	switch {
	case len(opts.Data) > 0:
		return opts.Data, nil
	case opts.URL != "":
		data, _, err := r.fetcher().Fetch(ctx, opts.URL, opts.Refresh)
		return data, err
	default:
		data, err := os.ReadFile(opts.Input)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "input %s", opts.Input)
		}
		return data, err
	}
}

func filterOperators(d *celltower.Dataset, operators []string) *celltower.Dataset {
	if len(operators) == 0 {
		return d
	}
	return d.FilterOperators(operators)
}
