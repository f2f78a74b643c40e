package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/klauspost/compress/gzip"
	"github.com/wI2L/jsondiff"

	"github.com/spboyer/loadout/internal/models"
	"github.com/spboyer/loadout/internal/orchestration"
	"github.com/spboyer/loadout/internal/solver"
)

// Failure records an algorithm that did not produce a solution.
type Failure struct {
	Algorithm solver.Algorithm `json:"algorithm"`
	Error     string           `json:"error"`
}

// Results is the document written by `solve --output` and the other
// commands that persist their answers.
type Results struct {
	RunID        string                      `json:"run_id"`
	CreatedAt    time.Time                   `json:"created_at"`
	Source       string                      `json:"source,omitempty"`
	Container    models.Container            `json:"container"`
	Items        []models.Item               `json:"items"`
	Solutions    []*models.Solution          `json:"solutions"`
	Failures     []Failure                   `json:"failures,omitempty"`
	Verification *orchestration.Verification `json:"verification,omitempty"`
}

// NewResults builds a results document from runner outcomes and stamps it
// with a fresh run id.
func NewResults(source string, items []models.Item, c models.Container, outcomes []orchestration.Outcome) *Results {
	r := &Results{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Source:    source,
		Container: c.Clone(),
		Items:     append([]models.Item{}, items...),
		Solutions: []*models.Solution{},
	}
	for _, o := range outcomes {
		if o.Err != nil {
			r.Failures = append(r.Failures, Failure{Algorithm: o.Algorithm, Error: o.Err.Error()})
			continue
		}
		r.Solutions = append(r.Solutions, o.Solution)
	}
	return r
}

func isGzip(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gz")
}

// SaveJSON writes r to path, gzip-compressed when the path ends in .gz.
func SaveJSON(path string, r *Results) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating results directory: %w", err)
		}
	}

	if !isGzip(path) {
		return os.WriteFile(path, append(data, '\n'), 0644)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("compressing results: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compressing results: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// ReadRaw returns the JSON bytes of a results file, decompressing .gz files.
func ReadRaw(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !isGzip(path) {
		return io.ReadAll(f)
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// LoadJSON reads a results file written by SaveJSON.
func LoadJSON(path string) (*Results, error) {
	data, err := ReadRaw(path)
	if err != nil {
		return nil, err
	}
	var r Results
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &r, nil
}

// Schema returns the JSON schema of the results document.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{ExpandedStruct: true}
	s := r.Reflect(&Results{})
	s.Title = "loadout results"
	return json.MarshalIndent(s, "", "  ")
}

// Diff returns the JSON patch that turns results a into results b. Fields
// that differ on every run (run id, creation time, execution times, the
// extrapolated brute force time) are ignored.
func Diff(a, b []byte) (jsondiff.Patch, error) {
	ignores := []string{"/run_id", "/created_at"}
	n := max(countSolutions(a), countSolutions(b))
	for i := 0; i < n; i++ {
		p := "/solutions/" + strconv.Itoa(i)
		ignores = append(ignores, p+"/execution_time_us", p+"/estimated_total_time_s")
	}
	n = max(countChecks(a), countChecks(b))
	for i := 0; i < n; i++ {
		ignores = append(ignores, "/verification/checks/"+strconv.Itoa(i)+"/execution_time_us")
	}
	return jsondiff.CompareJSON(a, b, jsondiff.Ignores(ignores...))
}

func countSolutions(data []byte) int {
	var doc struct {
		Solutions []json.RawMessage `json:"solutions"`
	}
	_ = json.Unmarshal(data, &doc)
	return len(doc.Solutions)
}

func countChecks(data []byte) int {
	var doc struct {
		Verification *struct {
			Checks []json.RawMessage `json:"checks"`
		} `json:"verification"`
	}
	_ = json.Unmarshal(data, &doc)
	if doc.Verification == nil {
		return 0
	}
	return len(doc.Verification.Checks)
}

// FormatPatch renders a patch one operation per line.
func FormatPatch(p jsondiff.Patch) string {
	var b strings.Builder
	for _, op := range p {
		switch op.Type {
		case jsondiff.OperationRemove:
			fmt.Fprintf(&b, "- %s\n", op.Path)
		case jsondiff.OperationAdd:
			fmt.Fprintf(&b, "+ %s = %s\n", op.Path, compactJSON(op.Value))
		default:
			fmt.Fprintf(&b, "~ %s: %s -> %s\n", op.Path, compactJSON(op.OldValue), compactJSON(op.Value))
		}
	}
	return b.String()
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
