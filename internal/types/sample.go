package types

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed sample.resume.json
var sampleResume []byte

// SampleResume returns a fresh copy of the bundled sample resume used by `init`.
func SampleResume() (Resume, error) {
	var resume Resume
	if err := json.Unmarshal(sampleResume, &resume); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sample resume: %w", err)
	}
	return resume, nil
}
