package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hweitzel/mixdesign/internal/design"
)

// setupTestStore creates a temporary directory and returns an FSStore.
func setupTestStore(t *testing.T) (*FSStore, string) {
	t.Helper()

	tempDir := t.TempDir()
	st, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	return st, tempDir
}

// testDesign creates a saved design with consistent test data.
func testDesign(id string) *SavedDesign {
	return &SavedDesign{
		ID: id,
		Config: DesignConfig{
			Mixtures:  3,
			Xmin:      []float64{0, 10},
			Xmax:      []float64{10, 100},
			MaxIter:   30,
			Seed:      42,
			Algorithm: "adaptive",
		},
		Names: []string{"C1", "C2"},
		Matrix: [][]float64{
			{0, 100},
			{5, 55},
			{10, 10},
		},
		Report: design.Report{
			Dmax:              0.5,
			MinDistance:       0.7,
			MaxAbsCorrelation: 0.3,
		},
		CreatedAt: time.Now(),
	}
}

func TestNewFSStore(t *testing.T) {
	tempDir := t.TempDir()

	st, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	if st == nil {
		t.Fatal("Expected non-nil store")
	}
}

func TestSaveDesign(t *testing.T) {
	st, tempDir := setupTestStore(t)

	d := testDesign("design-123")
	if err := st.SaveDesign(d.ID, d); err != nil {
		t.Fatalf("SaveDesign failed: %v", err)
	}

	jsonPath := filepath.Join(tempDir, "designs", d.ID, "design.json")
	if _, err := os.Stat(jsonPath); os.IsNotExist(err) {
		t.Fatalf("design.json was not created at %s", jsonPath)
	}

	csvPath := filepath.Join(tempDir, "designs", d.ID, "matrix.csv")
	if _, err := os.Stat(csvPath); os.IsNotExist(err) {
		t.Fatalf("matrix.csv was not created at %s", csvPath)
	}

	// no temp file remains
	if _, err := os.Stat(jsonPath + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("Temp file should not exist after save")
	}
}

func TestSaveDesign_EmptyID(t *testing.T) {
	st, _ := setupTestStore(t)
	if err := st.SaveDesign("", testDesign("any")); err == nil {
		t.Fatal("Expected error for empty ID")
	}
}

func TestSaveDesign_InvalidDesign(t *testing.T) {
	st, _ := setupTestStore(t)

	d := testDesign("bad")
	d.Names = []string{"only-one"} // mismatched with 2 columns
	if err := st.SaveDesign(d.ID, d); err == nil {
		t.Fatal("Expected error for inconsistent design")
	}
}

func TestLoadDesignRoundTrip(t *testing.T) {
	st, _ := setupTestStore(t)

	saved := testDesign("roundtrip")
	if err := st.SaveDesign(saved.ID, saved); err != nil {
		t.Fatalf("SaveDesign failed: %v", err)
	}

	loaded, err := st.LoadDesign(saved.ID)
	if err != nil {
		t.Fatalf("LoadDesign failed: %v", err)
	}

	if loaded.ID != saved.ID {
		t.Errorf("ID mismatch: %s != %s", loaded.ID, saved.ID)
	}
	if len(loaded.Matrix) != len(saved.Matrix) {
		t.Fatalf("Matrix row count mismatch: %d != %d", len(loaded.Matrix), len(saved.Matrix))
	}
	for i := range saved.Matrix {
		for j := range saved.Matrix[i] {
			if loaded.Matrix[i][j] != saved.Matrix[i][j] {
				t.Errorf("Matrix entry (%d,%d) mismatch", i, j)
			}
		}
	}
	if loaded.Report != saved.Report {
		t.Errorf("Report mismatch: %+v != %+v", loaded.Report, saved.Report)
	}
}

func TestLoadDesign_NotFound(t *testing.T) {
	st, _ := setupTestStore(t)

	_, err := st.LoadDesign("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestListDesigns(t *testing.T) {
	st, _ := setupTestStore(t)

	infos, err := st.ListDesigns()
	if err != nil {
		t.Fatalf("ListDesigns failed: %v", err)
	}
	if len(infos) != 0 {
		t.Fatalf("Expected empty list, got %d", len(infos))
	}

	for _, id := range []string{"a", "b", "c"} {
		if err := st.SaveDesign(id, testDesign(id)); err != nil {
			t.Fatalf("SaveDesign(%s) failed: %v", id, err)
		}
	}

	infos, err = st.ListDesigns()
	if err != nil {
		t.Fatalf("ListDesigns failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("Expected 3 designs, got %d", len(infos))
	}
	for _, info := range infos {
		if info.Mixtures != 3 || info.Components != 2 {
			t.Errorf("Unexpected info %+v", info)
		}
	}
}

func TestDeleteDesign(t *testing.T) {
	st, tempDir := setupTestStore(t)

	d := testDesign("doomed")
	if err := st.SaveDesign(d.ID, d); err != nil {
		t.Fatalf("SaveDesign failed: %v", err)
	}

	if err := st.DeleteDesign(d.ID); err != nil {
		t.Fatalf("DeleteDesign failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tempDir, "designs", d.ID)); !os.IsNotExist(err) {
		t.Error("Design directory should be removed")
	}

	if err := st.DeleteDesign(d.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSavedDesignValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*SavedDesign)
		wantErr bool
	}{
		{"valid", func(d *SavedDesign) {}, false},
		{"empty id", func(d *SavedDesign) { d.ID = "" }, true},
		{"empty matrix", func(d *SavedDesign) { d.Matrix = nil }, true},
		{"ragged matrix", func(d *SavedDesign) { d.Matrix[1] = []float64{1} }, true},
		{"name count", func(d *SavedDesign) { d.Names = append(d.Names, "extra") }, true},
		{"mixture count", func(d *SavedDesign) { d.Config.Mixtures = 99 }, true},
		{"zero timestamp", func(d *SavedDesign) { d.CreatedAt = time.Time{} }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := testDesign("validate")
			tc.mutate(d)
			err := d.Validate()
			if tc.wantErr && err == nil {
				t.Error("Expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestToMatrixRoundTrip(t *testing.T) {
	d := testDesign("matrix")
	m := d.ToMatrix()

	rows, cols := m.Dims()
	if rows != 3 || cols != 2 {
		t.Fatalf("Expected 3x2, got %dx%d", rows, cols)
	}
	for i := range d.Matrix {
		for j := range d.Matrix[i] {
			if m.At(i, j) != d.Matrix[i][j] {
				t.Errorf("Entry (%d,%d) mismatch", i, j)
			}
		}
	}
}
