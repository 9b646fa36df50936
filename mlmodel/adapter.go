// Package mlmodel is the Feature Builder + ML Adapter (spec §4.5).
// Feature assembly is grounded on
// original_source/app/ml/features.py's FeatureEngineer, collapsed to
// spec.md's fixed 9-feature order. Inference uses
// github.com/dmitryikh/leaves, a pure-Go LightGBM/XGBoost predictor —
// the one dependency in this tree with no grounding in the example
// pack, because nothing in the pack performs gradient-boosted
// inference; see DESIGN.md.
package mlmodel

import (
	"math"

	"github.com/dmitryikh/leaves"

	"pricerecommender/models"
)

// minConfidentSampleSize informs the confidence heuristic below; it
// is not a hard gate, just the point past which more data stops
// meaningfully moving confidence.
const minConfidentSampleSize = 15.0

// Adapter wraps a loaded regressor and its vocabulary. A zero-value
// Adapter (nil ensemble) is valid and always reports model unavailable.
type Adapter struct {
	ensemble *leaves.Ensemble
	vocab    *Vocab
}

// Load reads the serialized model and its vocabulary sidecar. Failure
// to load either is not fatal to the process — it is reported to the
// caller, who runs with an Adapter that always yields
// model_available=false, demoting the prediction method away from ml.
func Load(modelPath, vocabPath string) (*Adapter, error) {
	vocab, err := LoadVocab(vocabPath)
	if err != nil {
		return &Adapter{}, err
	}

	ensemble, err := leaves.LGEnsembleFromFile(modelPath, false)
	if err != nil {
		return &Adapter{vocab: vocab}, err
	}

	return &Adapter{ensemble: ensemble, vocab: vocab}, nil
}

// Available reports whether this Adapter can serve predictions.
func (a *Adapter) Available() bool {
	return a != nil && a.ensemble != nil
}

// Predict runs inference over a fixed-order feature vector, returning
// model_available=false (rather than an error) if the model failed to
// load — errors here are for the narrow, truly exceptional case of a
// loaded model refusing to score a well-formed vector.
func (a *Adapter) Predict(fv models.FeatureVector) (models.MLResult, error) {
	if !a.Available() {
		return models.MLResult{Available: false}, nil
	}

	fvals := fv[:]
	predictions := make([]float64, 1)
	if err := a.ensemble.Predict(fvals, -1, predictions); err != nil {
		return models.MLResult{Available: false}, err
	}

	return models.MLResult{
		Price:       predictions[0],
		Available:   true,
		Confidence:  a.confidence(fv),
		TopFeatures: topFeatures(fv),
	}, nil
}

// confidence is a sample-size-driven heuristic in the spirit of
// original_source's FeatureEngineer._calculate_confidence: a larger
// market sample asymptotically raises confidence (internal data does
// not enter it), capped at 0.95 — the model is never fully certain.
func (a *Adapter) confidence(fv models.FeatureVector) float64 {
	marketSize := fv[models.FeatMarketSampleSize]
	conf := 1 - math.Exp(-marketSize/minConfidentSampleSize)
	if conf > 0.95 {
		conf = 0.95
	}
	return conf
}

// topFeatures names the two features with the largest absolute values,
// carried on MLResult.TopFeatures. The pricing rationale and the HTTP
// response do not include them.
func topFeatures(fv models.FeatureVector) []string {
	names := []string{
		"category_id", "subcategory_id", "brand_id", "department_id",
		"production_price", "days_on_shelf", "market_median",
		"market_sample_size", "market_std",
	}

	type weighted struct {
		name string
		mag  float64
	}
	ranked := make([]weighted, len(names))
	for i, n := range names {
		ranked[i] = weighted{name: n, mag: math.Abs(fv[i])}
	}

	// selection sort for the top 2; the vector is fixed at 9 elements.
	for i := 0; i < 2 && i < len(ranked); i++ {
		maxIdx := i
		for j := i + 1; j < len(ranked); j++ {
			if ranked[j].mag > ranked[maxIdx].mag {
				maxIdx = j
			}
		}
		ranked[i], ranked[maxIdx] = ranked[maxIdx], ranked[i]
	}

	top := make([]string, 0, 2)
	for i := 0; i < 2 && i < len(ranked); i++ {
		top = append(top, ranked[i].name)
	}
	return top
}
