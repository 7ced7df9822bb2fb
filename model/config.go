package model

// TrainingConfig holds the hyperparameters of one training run.
type TrainingConfig struct {
	// Autoencoder parameters
	InputDim     int     `json:"input_dim"`
	HiddenDim    int     `json:"hidden_dim"`
	LatentDim    int     `json:"latent_dim"`
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
	LearningRate float64 `json:"learning_rate"`

	// Cluster refinement parameters
	Clusters       int     `json:"clusters"`
	Alpha          float64 `json:"alpha"`
	MaxIter        int     `json:"max_iter"`
	UpdateInterval int     `json:"update_interval"`

	// Evaluation parameters
	TestFraction float64 `json:"test_fraction"`

	// Seed fixes weight initialization, shuffling and k-means for reproducibility.
	Seed int64 `json:"seed"`
}

// DefaultTrainingConfig returns the hyperparameters the engine was tuned with.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		InputDim:       FeatureDim,
		HiddenDim:      8,
		LatentDim:      4,
		Epochs:         50,
		BatchSize:      16,
		LearningRate:   1e-3,
		Clusters:       2,
		Alpha:          1.0,
		MaxIter:        1000,
		UpdateInterval: 140,
		TestFraction:   0.3,
		Seed:           42,
	}
}

// MatchConfig holds the serving-side parameters of the matcher.
type MatchConfig struct {
	// SimilarityThreshold is the minimum cosine similarity for a suggestion.
	// The 0.95 cutoff is part of the external contract.
	SimilarityThreshold float64 `json:"similarity_threshold"`
}

// DefaultMatchConfig returns the serving defaults.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		SimilarityThreshold: 0.95,
	}
}
