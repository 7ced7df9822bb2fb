package neural

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/siherrmann/influmatch/helper"
	"github.com/siherrmann/influmatch/model"
)

const (
	encoderFileName = "encoder_model.json"
	decFileName     = "dec_model.json"

	artifactVersion = 1
)

// encoderArtifact is the on-disk form of the trained encoder.
type encoderArtifact struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Encoder   *Encoder  `json:"encoder"`
}

// decArtifact is the on-disk form of the full DEC model. The encoder inside
// is the refined one; the separate encoder file exists for serving paths that
// only embed.
type decArtifact struct {
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	Encoder   *Encoder        `json:"encoder"`
	Head      *ClusteringHead `json:"head"`
}

// ArtifactStore persists and loads trained model artifacts in a directory.
// Publishing writes temp files first and renames them into place, so a failed
// training run never replaces a served artifact with a partial one.
type ArtifactStore struct {
	Dir string
}

// NewArtifactStore creates a store rooted at dir.
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{Dir: dir}
}

// EncoderPath returns the path of the published encoder artifact.
func (s *ArtifactStore) EncoderPath() string {
	return filepath.Join(s.Dir, encoderFileName)
}

// DECPath returns the path of the published full model artifact.
func (s *ArtifactStore) DECPath() string {
	return filepath.Join(s.Dir, decFileName)
}

// Publish atomically replaces both model files with the given trained model.
func (s *ArtifactStore) Publish(trained *DECModel) (model.ModelPaths, error) {
	paths := model.ModelPaths{
		EncoderModel: s.EncoderPath(),
		DECModel:     s.DECPath(),
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return paths, helper.NewError("create model directory", err)
	}

	now := time.Now().UTC()
	encoderJSON, err := json.Marshal(encoderArtifact{
		Version:   artifactVersion,
		CreatedAt: now,
		Encoder:   trained.Encoder,
	})
	if err != nil {
		return paths, helper.NewError("marshal encoder artifact", err)
	}
	decJSON, err := json.Marshal(decArtifact{
		Version:   artifactVersion,
		CreatedAt: now,
		Encoder:   trained.Encoder,
		Head:      trained.Head,
	})
	if err != nil {
		return paths, helper.NewError("marshal dec artifact", err)
	}

	// Write both temp files before renaming either, so a failure here
	// leaves the previous artifacts untouched.
	encoderTmp := paths.EncoderModel + ".tmp"
	decTmp := paths.DECModel + ".tmp"
	if err := os.WriteFile(encoderTmp, encoderJSON, 0o644); err != nil {
		return paths, helper.NewError("write encoder artifact", err)
	}
	if err := os.WriteFile(decTmp, decJSON, 0o644); err != nil {
		return paths, helper.NewError("write dec artifact", err)
	}
	if err := os.Rename(encoderTmp, paths.EncoderModel); err != nil {
		return paths, helper.NewError("publish encoder artifact", err)
	}
	if err := os.Rename(decTmp, paths.DECModel); err != nil {
		return paths, helper.NewError("publish dec artifact", err)
	}

	return paths, nil
}

// LoadEncoder reads the published encoder. Returns model.ErrModelUnavailable
// if no artifact has been published yet.
func (s *ArtifactStore) LoadEncoder() (*Encoder, error) {
	data, err := os.ReadFile(s.EncoderPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, model.ErrModelUnavailable
	}
	if err != nil {
		return nil, helper.NewError("read encoder artifact", err)
	}

	artifact := &encoderArtifact{}
	if err := json.Unmarshal(data, artifact); err != nil {
		return nil, helper.NewError("unmarshal encoder artifact", err)
	}
	if artifact.Encoder == nil || len(artifact.Encoder.Layers) == 0 {
		return nil, helper.NewError("load encoder artifact", errors.New("artifact has no encoder layers"))
	}
	return artifact.Encoder, nil
}

// LoadDEC reads the published full model. Returns model.ErrModelUnavailable
// if no artifact has been published yet.
func (s *ArtifactStore) LoadDEC() (*DECModel, error) {
	data, err := os.ReadFile(s.DECPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, model.ErrModelUnavailable
	}
	if err != nil {
		return nil, helper.NewError("read dec artifact", err)
	}

	artifact := &decArtifact{}
	if err := json.Unmarshal(data, artifact); err != nil {
		return nil, helper.NewError("unmarshal dec artifact", err)
	}
	if artifact.Encoder == nil || artifact.Head == nil {
		return nil, helper.NewError("load dec artifact", errors.New("artifact is incomplete"))
	}
	return &DECModel{Encoder: artifact.Encoder, Head: artifact.Head}, nil
}
