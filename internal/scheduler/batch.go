package scheduler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"toolproof/internal/testrun"
)

// Manifest is the persisted record of one full run, written under
// <root>/.toolproof/runs/<id>/manifest.json, adapted from the teacher's
// batch.BatchResult/saveBatchManifest.
type Manifest struct {
	ID          string              `json:"id"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt time.Time           `json:"completed_at"`
	Results     []ManifestResult    `json:"results"`
}

// ManifestResult is one test's row in a run manifest.
type ManifestResult struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Attempts int    `json:"attempts"`
	Flaky    bool   `json:"flaky"`
	FailedAt int    `json:"failed_at,omitempty"`
	Error    string `json:"error,omitempty"`
	Screenshot string `json:"screenshot,omitempty"`
}

func newManifestID() string {
	return uuid.NewString()
}

// BuildManifest converts scheduler records into a persistable manifest.
func BuildManifest(started time.Time, records []Record) Manifest {
	m := Manifest{ID: newManifestID(), StartedAt: started, CompletedAt: time.Now()}
	for _, r := range records {
		mr := ManifestResult{Name: r.Name, Status: string(r.Status), Attempts: r.Attempts, Flaky: r.Flaky}
		if r.Outcome != nil {
			mr.FailedAt = r.Outcome.FailedAt
			mr.Screenshot = r.Outcome.Screenshot
			if r.Outcome.Err != nil {
				mr.Error = r.Outcome.Err.Error()
			}
		}
		m.Results = append(m.Results, mr)
	}
	return m
}

// SaveManifest writes m under root/.toolproof/runs/<id>/manifest.json,
// mirroring the teacher's per-batch output directory layout.
func SaveManifest(root string, m Manifest) (string, error) {
	dir := filepath.Join(root, ".toolproof", "runs", m.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "manifest.json")
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// LoadManifest resolves id to a stored manifest, accepting either a bare
// run ID or a direct path to a manifest.json.
func LoadManifest(root, id string) (Manifest, error) {
	path := id
	if filepath.Base(id) != "manifest.json" {
		path = filepath.Join(root, ".toolproof", "runs", id, "manifest.json")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("loading baseline %q: %w", id, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing baseline %q: %w", id, err)
	}
	return m, nil
}

// Comparison classifies every test name present in the current run against
// a baseline, grounded on the teacher's batch.Runner.Compare. Tests present
// only in the baseline are not listed.
type Comparison struct {
	Fixed     []string
	NewIssues []string
	Recurring []string
}

// Compare diffs current against baseline by test name and pass/fail status.
func Compare(current []Record, baseline Manifest) Comparison {
	base := make(map[string]string, len(baseline.Results))
	for _, r := range baseline.Results {
		base[r.Name] = r.Status
	}

	var cmp Comparison
	for _, r := range current {
		baseStatus, existed := base[r.Name]
		currFailing := r.Status == testrun.Failed
		baseFailing := existed && baseStatus == string(testrun.Failed)

		switch {
		case !existed:
			if currFailing {
				cmp.NewIssues = append(cmp.NewIssues, r.Name)
			}
		case baseFailing && !currFailing:
			cmp.Fixed = append(cmp.Fixed, r.Name)
		case !baseFailing && currFailing:
			cmp.NewIssues = append(cmp.NewIssues, r.Name)
		case baseFailing && currFailing:
			cmp.Recurring = append(cmp.Recurring, r.Name)
		}
	}

	sort.Strings(cmp.Fixed)
	sort.Strings(cmp.NewIssues)
	sort.Strings(cmp.Recurring)
	return cmp
}
