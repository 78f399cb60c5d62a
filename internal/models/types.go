package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// CopyJob pairs a remote grid path with the local path it is copied to.
type CopyJob struct {
	RemotePath string `json:"remote_path"`
	LocalPath  string `json:"local_path"`
}

// GlobSpec is a wildcard search request against the grid file catalog.
type GlobSpec struct {
	Base    string `json:"base" yaml:"base"`
	Pattern string `json:"pattern" yaml:"pattern"`
}

// UnmarshalJSON accepts either a two-element array ["base", "pattern"]
// or a {"base": ..., "pattern": ...} object.
func (g *GlobSpec) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("glob entry must have exactly 2 elements, got %d", len(pair))
		}
		g.Base, g.Pattern = pair[0], pair[1]
		return nil
	}

	type plain GlobSpec
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*g = GlobSpec(obj)
	return nil
}

// UnmarshalYAML accepts the same two forms as UnmarshalJSON.
func (g *GlobSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var pair []string
		if err := node.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("glob entry must have exactly 2 elements, got %d", len(pair))
		}
		g.Base, g.Pattern = pair[0], pair[1]
		return nil
	}

	type plain GlobSpec
	var obj plain
	if err := node.Decode(&obj); err != nil {
		return err
	}
	*g = GlobSpec(obj)
	return nil
}

// OutcomeStatus classifies what happened to a single CopyJob.
type OutcomeStatus string

const (
	StatusDownloaded OutcomeStatus = "downloaded"
	StatusSkipped    OutcomeStatus = "skipped"
	StatusFailed     OutcomeStatus = "failed"
)

// Outcome is the per-job result of a download run.
type Outcome struct {
	Job    CopyJob
	Status OutcomeStatus
	Err    error
}

func Downloaded(job CopyJob) Outcome {
	return Outcome{Job: job, Status: StatusDownloaded}
}

func Skipped(job CopyJob) Outcome {
	return Outcome{Job: job, Status: StatusSkipped}
}

func Failed(job CopyJob, err error) Outcome {
	return Outcome{Job: job, Status: StatusFailed, Err: err}
}

// OK reports whether the job does not need to be re-fetched.
// A skipped job counts as a success.
func (o Outcome) OK() bool {
	return o.Status != StatusFailed
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}

type ArchiveInfo struct {
	ArchivePath      string    `json:"archive_path"`
	OriginalPaths    []string  `json:"original_paths"`
	CompressedSize   int64     `json:"compressed_size"`
	OriginalSize     int64     `json:"original_size"`
	CompressionRatio float64   `json:"compression_ratio"`
	CreatedAt        time.Time `json:"created_at"`
}
