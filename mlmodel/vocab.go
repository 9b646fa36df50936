package mlmodel

import (
	"encoding/json"
	"os"
)

// UnknownID is the reserved bucket id per spec §4.5 for categorical
// values the vocabulary was never trained on.
const UnknownID = 0

// Vocab is the training-time vocabulary and fill values bundled
// alongside the serialized model artifact: categorical-to-id maps and
// per-column training means, so an unknown value at inference time
// never has to be guessed ad hoc.
type Vocab struct {
	CategoryIDs    map[string]int     `json:"category_ids"`
	SubcategoryIDs map[string]int     `json:"subcategory_ids"`
	BrandIDs       map[string]int     `json:"brand_ids"`
	DepartmentIDs  map[string]int     `json:"department_ids"`
	TrainingMeans  map[string]float64 `json:"training_means"`
}

// LoadVocab reads the JSON sidecar at path. A missing or malformed
// file is reported to the caller, which demotes model_available
// rather than aborting startup.
func LoadVocab(path string) (*Vocab, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v Vocab
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (v *Vocab) lookup(table map[string]int, key string) int {
	if v == nil || table == nil {
		return UnknownID
	}
	if id, ok := table[key]; ok {
		return id
	}
	return UnknownID
}

func (v *Vocab) mean(column string, fallback float64) float64 {
	if v == nil || v.TrainingMeans == nil {
		return fallback
	}
	if m, ok := v.TrainingMeans[column]; ok {
		return m
	}
	return fallback
}
