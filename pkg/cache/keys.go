package cache

import "fmt"

// Keyer builds cache keys.
type Keyer interface {
	// DatasetKey identifies a converted dataset by the hash of its input.
	DatasetKey(inputHash string, opts DatasetKeyOpts) string

	// ArtifactKey identifies one rendered format of a decluttered dataset.
	ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string
}

// DatasetKeyOpts are the conversion options that change the dataset.
type DatasetKeyOpts struct {
	Source string `json:"source"`
	Name   string `json:"name"`
	Lang   string `json:"lang"`
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format     string   `json:"format"`
	Title      string   `json:"title,omitempty"`
	Operators  []string `json:"operators,omitempty"`
	ConfigHash string   `json:"config_hash,omitempty"`
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DatasetKey returns "dataset:<sha256>".
func (DefaultKeyer) DatasetKey(inputHash string, opts DatasetKeyOpts) string {
	return hashKey("dataset", inputHash, opts)
}

// ArtifactKey returns "artifact:<format>:<sha256>".
func (DefaultKeyer) ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), datasetHash, opts)
}
