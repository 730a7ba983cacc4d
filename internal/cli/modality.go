package cli

import (
	"path/filepath"
	"strings"

	"github.com/daryltucker/model-harness/internal/model"
)

// InferModality guesses a model's modality from its file name: any audio
// keyword in the base name means audio, everything else is image.
// It is only a default; --modality overrides it.
func InferModality(path string, audioKeywords []string) model.Modality {
	name := strings.ToLower(filepath.Base(path))
	for _, kw := range audioKeywords {
		if kw != "" && strings.Contains(name, strings.ToLower(kw)) {
			return model.Audio
		}
	}
	return model.Image
}

// resolveModality returns the explicit override when set, else the guess.
func resolveModality(override, path string, audioKeywords []string) (model.Modality, error) {
	if override != "" {
		return model.ParseModality(override)
	}
	return InferModality(path, audioKeywords), nil
}
