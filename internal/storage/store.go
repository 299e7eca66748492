package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/raj-open/herz-sub000/internal/onb"
	"github.com/raj-open/herz-sub000/internal/pipeline"
	"github.com/raj-open/herz-sub000/internal/points"
)

const (
	metadataFile = "metadata.json"
	fitsFile     = "fits.csv"
)

var ErrNotFound = errors.New("storage: run not found")

var fitsHeader = []string{"window", "start", "period", "intercept", "gradient", "scale"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// WindowSummary is the stored outcome of one window.
type WindowSummary struct {
	Index    int            `json:"index"`
	Start    int            `json:"start"`
	End      int            `json:"end"`
	Peak     float64        `json:"peak"`
	Residual float64        `json:"residual"`
	Points   []points.Point `json:"points"`
	Error    string         `json:"error,omitempty"`
}

type RunMetadata struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	Quantity  string          `json:"quantity"`
	Timestamp time.Time       `json:"timestamp"`
	Degree    int             `json:"degree"`
	Accuracy  float64         `json:"accuracy"`
	Samples   int             `json:"samples"`
	Failed    int             `json:"failed"`
	Windows   []WindowSummary `json:"windows"`
}

// FitRecord is one row of a run's fits.
type FitRecord struct {
	Window int
	Fit    onb.FittedInfo
}

// Save stores a run under a fresh id. meta.ID, meta.Timestamp, meta.Failed
// and meta.Windows are filled from the results.
func (s *Store) Save(meta RunMetadata, results []*pipeline.WindowResult) (string, error) {
	meta.ID = uuid.NewString()
	meta.Timestamp = time.Now().UTC()
	meta.Failed = pipeline.Failed(results)
	meta.Windows = make([]WindowSummary, 0, len(results))
	for _, r := range results {
		ws := WindowSummary{
			Index:    r.Index,
			Start:    r.Window.Start,
			End:      r.Window.End,
			Peak:     r.Peak,
			Residual: r.Residual,
			Points:   r.Points,
		}
		if r.Err != nil {
			ws.Error = r.Err.Error()
		}
		meta.Windows = append(meta.Windows, ws)
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFits(filepath.Join(runDir, fitsFile), results); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFits(path string, results []*pipeline.WindowResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ncoef := 0
	for _, r := range results {
		if r.Fit != nil {
			ncoef = max(ncoef, len(r.Fit.Coefficients))
		}
	}
	header := append([]string(nil), fitsHeader...)
	for k := 0; k < ncoef; k++ {
		header = append(header, fmt.Sprintf("c%d", k))
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		if r.Fit == nil {
			continue
		}
		n := r.Fit.Normalisation
		row := []string{strconv.Itoa(r.Index), format(n.Start), format(n.Period), format(n.Intercept), format(n.Gradient), format(n.Scale)}
		for k := 0; k < ncoef; k++ {
			c := 0.0
			if k < len(r.Fit.Coefficients) {
				c = r.Fit.Coefficients[k]
			}
			row = append(row, format(c))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadFits reads the fitted windows of a run. Trailing zero coefficients
// written for alignment are kept.
func (s *Store) LoadFits(runID string) ([]FitRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, fitsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []FitRecord{}, nil
	}

	fits := make([]FitRecord, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < len(fitsHeader) {
			continue
		}
		idx, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		vals := make([]float64, len(record)-1)
		for j := range vals {
			if vals[j], err = strconv.ParseFloat(record[j+1], 64); err != nil {
				return nil, fmt.Errorf("storage: window %d column %d: %w", idx, j+1, err)
			}
		}
		fits = append(fits, FitRecord{
			Window: idx,
			Fit: onb.FittedInfo{
				Normalisation: onb.Normalisation{
					Start:     vals[0],
					Period:    vals[1],
					Intercept: vals[2],
					Gradient:  vals[3],
					Scale:     vals[4],
				},
				Coefficients: vals[5:],
			},
		})
	}
	return fits, nil
}
