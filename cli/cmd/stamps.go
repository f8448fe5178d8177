package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/zeebo/xxh3"
)

// stamps is the freshness index for one output directory: the content
// hash of each input, keyed by output-relative name, recorded the last
// time it was compiled. Inputs whose hash matches can be skipped.
type stamps struct {
	Files map[string]string `yaml:"files"`
}

// stampsPath derives the freshness index location for one output
// directory. Indices live under the cache directory so output
// directories hold deliverables only.
func stampsPath(cacheDir, outputDir string) string {
	abs, err := filepath.Abs(outputDir)
	if err != nil {
		abs = outputDir
	}

	name := strconv.FormatUint(xxh3.HashString(abs), 16) + ".yaml"

	return filepath.Join(cacheDir, "stamps", name)
}

// loadStamps reads the index at path. A missing or malformed index is
// treated as empty, which forces everything to recompile.
func loadStamps(path string) stamps {
	var s stamps

	data, err := os.ReadFile(path)
	if err == nil {
		err = yaml.Unmarshal(data, &s)
	}

	if err != nil || s.Files == nil {
		s.Files = make(map[string]string)
	}

	return s
}

// fresh reports whether name was last compiled from content hashing to
// sum.
func (s stamps) fresh(name string, sum uint64) bool {
	return s.Files[name] == formatSum(sum)
}

// record notes that name was compiled from content hashing to sum.
func (s stamps) record(name string, sum uint64) {
	s.Files[name] = formatSum(sum)
}

// save writes the index to path, creating parent directories as needed.
func (s stamps) save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err).
			With(slog.String("path", path))
	}

	err = os.MkdirAll(filepath.Dir(path), 0o755)
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}

	if err != nil {
		return ErrWriteOutput.Wrap(err).
			With(slog.String("path", path))
	}

	return nil
}

func formatSum(sum uint64) string {
	return strconv.FormatUint(sum, 16)
}
