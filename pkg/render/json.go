package render

import (
	"github.com/matzehuels/celltower/pkg/celltower"
)

// JSON renders the interchange dataset.
func JSON(in Input) ([]byte, error) {
	d := in.Dataset
	if d == nil {
		d = &celltower.Dataset{Name: celltower.DefaultDatasetName}
	}
	return celltower.MarshalDataset(d)
}
