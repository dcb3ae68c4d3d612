package celltower

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	apperrors "github.com/matzehuels/celltower/pkg/errors"
)

// DefaultDatasetName is the name written by the converter.
const DefaultDatasetName = "celltowerdataset"

// Dataset is the interchange file between conversion and rendering.
// Site order is significant: the declutter pass consumes it as-is.
type Dataset struct {
	Name       string `json:"name"`
	CellTowers []Site `json:"celltowers"`
}

// Len returns the number of sites.
func (d *Dataset) Len() int { return len(d.CellTowers) }

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	return &Dataset{Name: d.Name, CellTowers: slices.Clone(d.CellTowers)}
}

// Operators returns the distinct operators in first-seen order.
func (d *Dataset) Operators() []string {
	var ops []string
	seen := make(map[string]bool)
	for _, s := range d.CellTowers {
		if !seen[s.Operator] {
			seen[s.Operator] = true
			ops = append(ops, s.Operator)
		}
	}
	return ops
}

// FilterOperators returns a copy holding only the sites of the given
// operators, in the original order.
func (d *Dataset) FilterOperators(ops []string) *Dataset {
	out := &Dataset{Name: d.Name, CellTowers: []Site{}}
	for _, s := range d.CellTowers {
		if slices.Contains(ops, s.Operator) {
			out.CellTowers = append(out.CellTowers, s)
		}
	}
	return out
}

// MarshalDataset encodes d with 4-space indentation, leaving non-ASCII and
// HTML characters unescaped.
func MarshalDataset(d *Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDataset(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDataset encodes d to w.
func WriteDataset(w io.Writer, d *Dataset) error {
	if d.CellTowers == nil {
		d = &Dataset{Name: d.Name, CellTowers: []Site{}}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(d)
}

// ReadDataset decodes an interchange file.
func ReadDataset(r io.Reader) (*Dataset, error) {
	var d Dataset
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidDataset, err, "decode dataset")
	}
	if d.CellTowers == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidDataset, "dataset has no celltowers array")
	}
	return &d, nil
}

// UnmarshalDataset decodes an interchange file from bytes.
func UnmarshalDataset(data []byte) (*Dataset, error) {
	return ReadDataset(bytes.NewReader(data))
}

// ReadDatasetFile reads an interchange file from disk.
func ReadDatasetFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDataset(f)
}

// WriteDatasetFile writes d to path.
func WriteDatasetFile(d *Dataset, path string) error {
	data, err := MarshalDataset(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
