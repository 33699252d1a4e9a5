package plot

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/minhyannv/msise00-go/pkg/atmos"
)

func profileDataset(t *testing.T) *atmos.Dataset {
	t.Helper()
	ds := atmos.New(
		[]time.Time{time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)},
		[]float64{100, 200, 300},
		[]float64{65},
		[]float64{-148},
	)
	if err := ds.AddVariable(atmos.He, "", []float64{1e13, 5e12, 0}); err != nil {
		t.Fatalf("add He: %v", err)
	}
	if err := ds.AddVariable(atmos.N2, "", []float64{1e18, 1e15, 1e13}); err != nil {
		t.Fatalf("add N2: %v", err)
	}
	if err := ds.AddVariable(atmos.Tn, "", []float64{190, 850, math.NaN()}); err != nil {
		t.Fatalf("add Tn: %v", err)
	}
	return ds
}

func gridDataset(t *testing.T) *atmos.Dataset {
	t.Helper()
	lat := []float64{-90, 0, 90}
	lon := []float64{-180, -90, 0, 90, 180}
	ds := atmos.New([]time.Time{time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)}, []float64{200}, lat, lon)
	data := make([]float64, ds.Len())
	for i := range data {
		data[i] = float64(i) * 1e12
	}
	if err := ds.AddVariable(atmos.O, "", data); err != nil {
		t.Fatalf("add O: %v", err)
	}
	flat := make([]float64, ds.Len())
	for i := range flat {
		flat[i] = 1000
	}
	if err := ds.AddVariable(atmos.Texo, "", flat); err != nil {
		t.Fatalf("add Texo: %v", err)
	}
	return ds
}

func TestPlotProfileWritesDensityAndTemperature(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "figs")
	g := New(Options{})

	files, err := g.Plot(context.Background(), profileDataset(t), dir)
	if err != nil {
		t.Fatalf("Plot: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 figures, got %v", files)
	}
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			t.Fatalf("stat %s: %v", f, err)
		}
		if info.Size() == 0 {
			t.Fatalf("figure %s is empty", f)
		}
		if filepath.Dir(f) != dir {
			t.Fatalf("figure %s not in %s", f, dir)
		}
	}
	if !strings.HasPrefix(filepath.Base(files[0]), "density_") || !strings.HasPrefix(filepath.Base(files[1]), "temperature_") {
		t.Fatalf("unexpected figure names %v", files)
	}
}

func TestPlotGridWritesOneMapPerVariable(t *testing.T) {
	dir := t.TempDir()
	files, err := New(Options{}).Plot(context.Background(), gridDataset(t), dir)
	if err != nil {
		t.Fatalf("Plot: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 maps, got %v", files)
	}
	if !strings.Contains(files[0], "map_O_") || !strings.Contains(files[1], "map_Texo_") {
		t.Fatalf("unexpected map names %v", files)
	}
}

func TestPlotWithoutDirUsesTempDirRemovedAfterShow(t *testing.T) {
	dir := t.TempDir()
	viewer := filepath.Join(dir, "viewer")
	if err := os.WriteFile(viewer, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write viewer: %v", err)
	}
	g := New(Options{Viewer: viewer})

	files, err := g.Plot(context.Background(), profileDataset(t), "")
	if err != nil {
		t.Fatalf("Plot: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("expected figures")
	}
	figDir := filepath.Dir(files[0])
	t.Cleanup(func() { _ = os.RemoveAll(figDir) })
	if !strings.HasPrefix(filepath.Base(figDir), "msise00-") {
		t.Fatalf("expected temp dir, got %s", files[0])
	}

	if err := g.Show(context.Background(), files); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if _, err := os.Stat(figDir); !os.IsNotExist(err) {
		t.Fatalf("temp figure dir should be gone after Show, stat err %v", err)
	}
}

func TestShowKeepsRequestedDir(t *testing.T) {
	dir := t.TempDir()
	viewer := filepath.Join(dir, "viewer")
	if err := os.WriteFile(viewer, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write viewer: %v", err)
	}
	odir := filepath.Join(dir, "figs")
	g := New(Options{Viewer: viewer})

	files, err := g.Plot(context.Background(), profileDataset(t), odir)
	if err != nil {
		t.Fatalf("Plot: %v", err)
	}
	if err := g.Show(context.Background(), files); err != nil {
		t.Fatalf("Show: %v", err)
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			t.Fatalf("figure %s should survive Show: %v", f, err)
		}
	}
}

func TestGridSliceRange(t *testing.T) {
	ds := gridDataset(t)
	o, _ := ds.Variable(atmos.O)
	o.Data[0] = math.NaN()

	lo, hi, ok := gridSlice{ds: ds, v: o}.zRange()
	if !ok || lo != 1e12 || hi != 14e12 {
		t.Fatalf("unexpected range %v %v %v", lo, hi, ok)
	}

	texo, _ := ds.Variable(atmos.Texo)
	lo, hi, ok = gridSlice{ds: ds, v: texo}.zRange()
	if !ok || lo != 999 || hi != 1001 {
		t.Fatalf("flat range should widen, got %v %v %v", lo, hi, ok)
	}
}

func TestCheck(t *testing.T) {
	if a := Check("none"); a.OK || !strings.Contains(a.Reason, "disabled") {
		t.Fatalf("expected disabled, got %+v", a)
	}
	if a := Check("msise00-no-such-viewer"); a.OK || !strings.Contains(a.Reason, "not found") {
		t.Fatalf("expected missing viewer, got %+v", a)
	}

	dir := t.TempDir()
	viewer := filepath.Join(dir, "viewer")
	if err := os.WriteFile(viewer, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write viewer: %v", err)
	}
	t.Setenv("PATH", dir)
	if a := Check("viewer"); !a.OK || a.Viewer != viewer {
		t.Fatalf("expected viewer on PATH, got %+v", a)
	}
}

func TestShowRunsViewer(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "shown")
	viewer := filepath.Join(dir, "viewer")
	script := "#!/bin/sh\necho \"$@\" > " + marker + "\n"
	if err := os.WriteFile(viewer, []byte(script), 0o755); err != nil {
		t.Fatalf("write viewer: %v", err)
	}

	g := New(Options{Viewer: viewer, ViewerArgs: []string{"-F"}})
	if err := g.Show(context.Background(), []string{"a.png", "b.png"}); err != nil {
		t.Fatalf("Show: %v", err)
	}
	got, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if strings.TrimSpace(string(got)) != "-F a.png b.png" {
		t.Fatalf("unexpected viewer args %q", got)
	}
}

func TestShowReportsViewerFailure(t *testing.T) {
	viewer := filepath.Join(t.TempDir(), "viewer")
	if err := os.WriteFile(viewer, []byte("#!/bin/sh\nexit 3\n"), 0o755); err != nil {
		t.Fatalf("write viewer: %v", err)
	}
	if err := New(Options{Viewer: viewer}).Show(context.Background(), []string{"a.png"}); err == nil {
		t.Fatal("expected viewer failure")
	}
}

func fakeViewers(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	t.Setenv("PATH", dir)
	return dir
}

func TestCheckDarwinWaitsForOpen(t *testing.T) {
	dir := fakeViewers(t, "open")

	a := check("darwin", "")
	if !a.OK || a.Viewer != filepath.Join(dir, "open") {
		t.Fatalf("expected open on PATH, got %+v", a)
	}
	if diff := cmp.Diff([]string{"-W", "-n"}, a.ViewerArgs); diff != "" {
		t.Fatalf("open must block (-want +got):\n%s", diff)
	}
}

func TestCheckSkipsNonBlockingXdgOpen(t *testing.T) {
	fakeViewers(t, "xdg-open")

	if a := check("linux", ""); a.OK {
		t.Fatalf("xdg-open returns at once and must not be chosen, got %+v", a)
	}
}

func TestCheckLinuxPrefersFeh(t *testing.T) {
	dir := fakeViewers(t, "eog", "feh")

	a := check("linux", "")
	if !a.OK || a.Viewer != filepath.Join(dir, "feh") || len(a.ViewerArgs) != 0 {
		t.Fatalf("expected feh without args, got %+v", a)
	}
}
