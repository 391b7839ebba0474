package environment

import "fmt"

// Dataset selects input-normalization and call-construction rules.
type Dataset string

const (
	DatasetHE       Dataset = "HE"
	DatasetHEPlus   Dataset = "HE_plus"
	DatasetMBPP     Dataset = "MBPP"
	DatasetMBPPPlus Dataset = "MBPP_plus"
)

// ParseDataset accepts the canonical names and the legacy "+" spellings.
func ParseDataset(s string) (Dataset, error) {
	switch s {
	case "HE":
		return DatasetHE, nil
	case "HE_plus", "HE+":
		return DatasetHEPlus, nil
	case "MBPP":
		return DatasetMBPP, nil
	case "MBPP_plus", "MBPP+":
		return DatasetMBPPPlus, nil
	}
	return "", fmt.Errorf("unknown dataset type %q (want HE, HE_plus, MBPP or MBPP_plus)", s)
}

// PromptField returns the JSON key carrying the task prompt for this
// dataset: plain MBPP uses "text", everything else "prompt".
func (d Dataset) PromptField() string {
	if d == DatasetMBPP {
		return "text"
	}
	return "prompt"
}

// HasPlusTier reports whether the dataset carries a plus test-input tier.
// Plain MBPP has none, so plus ranks stay null there.
func (d Dataset) HasPlusTier() bool {
	return d != DatasetMBPP
}
