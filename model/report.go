package model

// TestRecord is one held-out sample with its predicted cluster.
type TestRecord struct {
	EntityType EntityType `json:"entity_type"`
	EntityName string     `json:"entity_name"`
	TrueLabel  int        `json:"true_label"`
	Cluster    int        `json:"cluster"`
	Features   []float64  `json:"features"`
}

// Evaluation summarizes clustering quality on the held-out split.
type Evaluation struct {
	SilhouetteScore    float64      `json:"silhouette_score"`
	ClusteringAccuracy float64      `json:"clustering_accuracy"`
	PredictedClusters  []int        `json:"predicted_clusters"`
	TestRecords        []TestRecord `json:"df_test"`
}

// ModelPaths points at the published model artifacts.
type ModelPaths struct {
	DECModel     string `json:"dec_model"`
	EncoderModel string `json:"encoder_model"`
}

// TrainingReport is the JSON-serializable result of one training run.
// LossHistory carries the last values of the refinement loss.
type TrainingReport struct {
	Message     string     `json:"message"`
	Evaluation  Evaluation `json:"evaluation"`
	LossHistory []float64  `json:"loss_history"`
	ModelPaths  ModelPaths `json:"model_paths"`
}

// SuggestionResult is the response of one matching request.
type SuggestionResult struct {
	UserProfileMetrics map[string]interface{} `json:"user_profile_metrics"`
	SuggestedCount     int                    `json:"suggested_count"`
	SuggestedBrands    []*BrandMatch          `json:"suggested_brands"`
}
