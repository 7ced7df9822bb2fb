// Package training runs the offline model pipeline: standardize, pretrain,
// cluster-refine, evaluate and publish.
package training

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/siherrmann/influmatch/core/evaluate"
	"github.com/siherrmann/influmatch/core/feature"
	"github.com/siherrmann/influmatch/core/neural"
	"github.com/siherrmann/influmatch/helper"
	"github.com/siherrmann/influmatch/model"
)

// lossHistoryTail is how many trailing refinement losses the report carries.
const lossHistoryTail = 5

// Pipeline owns one offline training run. It is a single-threaded batch job;
// nothing is visible to serving until Publish replaces both artifacts.
type Pipeline struct {
	store *neural.ArtifactStore
	log   *slog.Logger
}

// NewPipeline creates a pipeline publishing into the given artifact store.
func NewPipeline(store *neural.ArtifactStore, log *slog.Logger) *Pipeline {
	return &Pipeline{
		store: store,
		log:   log,
	}
}

// Run trains on the given entity records and publishes the resulting model.
// The records are standardized over the combined population, split into a
// stratified train/test set, pretrained as an autoencoder, refined with the
// clustering head and evaluated on the held-out split. All randomness is
// derived from config.Seed, so a run is reproducible for fixed inputs.
func (p *Pipeline) Run(records []model.EntityRecord, config model.TrainingConfig) (*model.TrainingReport, error) {
	if len(records) < 2*config.Clusters {
		return nil, helper.NewError("Run", fmt.Errorf("need at least %d entity records, got %d", 2*config.Clusters, len(records)))
	}

	population := make([][]float64, len(records))
	for i, r := range records {
		imputed := feature.ImputeUndefined(r.Features)
		if err := model.ValidateFeatures(imputed); err != nil {
			return nil, helper.NewError("Run", err)
		}
		population[i] = imputed
	}

	normalizer, err := feature.FitNormalizer(population)
	if err != nil {
		return nil, helper.NewError("Run", err)
	}
	standardized := normalizer.TransformAll(population)

	rng := rand.New(rand.NewSource(config.Seed))
	trainIdx, testIdx, err := stratifiedSplit(records, config.TestFraction, rng)
	if err != nil {
		return nil, helper.NewError("Run", err)
	}

	trainX := make([][]float64, len(trainIdx))
	for i, idx := range trainIdx {
		trainX[i] = standardized[idx]
	}

	p.log.Info("pretraining autoencoder", "train", len(trainIdx), "test", len(testIdx), "epochs", config.Epochs)
	autoencoder := neural.NewAutoencoder(config, rng)
	autoencoder.Train(trainX, config, rng, p.log)

	latents := make([][]float64, len(trainX))
	for i, x := range trainX {
		latents[i] = autoencoder.Encoder.Encode(x)
	}
	centers, _, err := neural.KMeans(latents, config.Clusters, 300, rng)
	if err != nil {
		return nil, helper.NewError("Run", err)
	}

	dec := &neural.DECModel{
		Encoder: autoencoder.Encoder,
		Head:    neural.NewClusteringHead(centers, config.Alpha),
	}

	p.log.Info("refining clusters", "clusters", config.Clusters, "maxiter", config.MaxIter)
	lossHistory := dec.Refine(trainX, config, p.log)

	testRecords := make([]model.EntityRecord, len(testIdx))
	for i, idx := range testIdx {
		testRecords[i] = model.EntityRecord{
			EntityType: records[idx].EntityType,
			EntityName: records[idx].EntityName,
			TrueLabel:  records[idx].TrueLabel,
			Features:   standardized[idx],
		}
	}
	evaluation, err := evaluate.Evaluate(dec, testRecords)
	if err != nil {
		return nil, helper.NewError("Run", err)
	}

	paths, err := p.store.Publish(dec)
	if err != nil {
		return nil, helper.NewError("Run", err)
	}

	if len(lossHistory) > lossHistoryTail {
		lossHistory = lossHistory[len(lossHistory)-lossHistoryTail:]
	}

	p.log.Info("training run finished",
		"silhouette", evaluation.SilhouetteScore,
		"accuracy", evaluation.ClusteringAccuracy,
		"encoder", paths.EncoderModel,
	)

	return &model.TrainingReport{
		Message:     "model trained, evaluated and saved successfully",
		Evaluation:  evaluation,
		LossHistory: lossHistory,
		ModelPaths:  paths,
	}, nil
}

// stratifiedSplit partitions record indices into train and test sets, drawing
// the test fraction from every entity label separately so both sides of the
// split keep the population's label proportions. Each label keeps at least one
// training sample.
func stratifiedSplit(records []model.EntityRecord, testFraction float64, rng *rand.Rand) (train []int, test []int, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction must be in (0,1), got %v", testFraction)
	}

	groups := map[int][]int{}
	var labels []int
	for i, r := range records {
		if _, ok := groups[r.TrueLabel]; !ok {
			labels = append(labels, r.TrueLabel)
		}
		groups[r.TrueLabel] = append(groups[r.TrueLabel], i)
	}

	for _, label := range labels {
		group := groups[label]
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})

		nTest := int(math.Round(testFraction * float64(len(group))))
		if nTest >= len(group) {
			nTest = len(group) - 1
		}

		test = append(test, group[:nTest]...)
		train = append(train, group[nTest:]...)
	}

	if len(train) == 0 {
		return nil, nil, fmt.Errorf("empty training split for %d records", len(records))
	}
	return train, test, nil
}
