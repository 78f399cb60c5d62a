package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridfetch/config"
	"gridfetch/internal/backend"
	"gridfetch/internal/grid"
	"gridfetch/internal/models"
	"gridfetch/internal/pathmap"
	"gridfetch/internal/stats"
)

type fakeConnector struct {
	mu    sync.Mutex
	dials int
	err   error
}

func (f *fakeConnector) Connect(_ context.Context) (*grid.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dials++
	if f.err != nil {
		return nil, f.err
	}
	return grid.NewSession("fake"), nil
}

type fakeQuery struct {
	results map[string]string
	errs    map[string]error
}

func (f *fakeQuery) Find(_ context.Context, _ *grid.Session, args []string) (string, error) {
	base := args[len(args)-1]
	if err, ok := f.errs[base]; ok {
		return "", err
	}
	return f.results[base], nil
}

// fakeCopier materializes destination files like a real transfer would.
type fakeCopier struct {
	mu          sync.Mutex
	copies      int
	failRemotes map[string]bool
}

func (f *fakeCopier) Copy(_ context.Context, src, dst string) error {
	f.mu.Lock()
	f.copies++
	f.mu.Unlock()
	if f.failRemotes[strings.TrimPrefix(src, "alien://")] {
		return fmt.Errorf("copy failed: %s", src)
	}
	return os.WriteFile(strings.TrimPrefix(dst, "file:"), []byte("data"), 0o644)
}

func (f *fakeCopier) copyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copies
}

// recordingBackend captures the jobs it was dispatched with.
type recordingBackend struct {
	jobs []models.CopyJob
	runs int
}

func (r *recordingBackend) Name() string { return "recording" }

func (r *recordingBackend) Run(_ context.Context, jobs []models.CopyJob) *backend.RunReport {
	r.runs++
	r.jobs = jobs
	outcomes := make([]models.Outcome, len(jobs))
	for i, job := range jobs {
		outcomes[i] = models.Downloaded(job)
	}
	return &backend.RunReport{Outcomes: outcomes}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.NumWorkers = 2
	return cfg
}

func perFileDownloader(cfg *config.Config, conn *fakeConnector, copier *fakeCopier, query grid.QueryClient) *Downloader {
	st := stats.NewCollector()
	b := backend.NewPerFile(conn, copier, cfg.NumWorkers, st)
	return newDownloader(cfg, b, conn, query, st)
}

func TestDownloadEmptyInput(t *testing.T) {
	cfg := testConfig(t)
	b := &recordingBackend{}
	conn := &fakeConnector{}
	d := newDownloader(cfg, b, conn, &fakeQuery{}, nil)

	result, err := d.Download(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.TotalFiles)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 0, b.runs, "backend must not be dispatched for an empty run")
	assert.Equal(t, 0, conn.dials, "no session needed for an empty run")
	assert.NotEmpty(t, result.RunID)
}

func TestDownloadExplicitFiles(t *testing.T) {
	cfg := testConfig(t)
	cfg.RemoteFiles = []string{"/alice/data/a/1.root", "/alice/data/a/2.root"}
	copier := &fakeCopier{}
	d := perFileDownloader(cfg, &fakeConnector{}, copier, &fakeQuery{})

	result, err := d.Download(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalFiles)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.Items, 2)
	assert.Equal(t, string(models.StatusDownloaded), result.Items[0].Status)
	assert.Equal(t, int64(4), result.Items[0].Size)
	assert.Equal(t, int64(8), result.TotalSizeBytes)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "alice", "data", "a", "1.root"))
}

func TestDownloadIdempotentRerun(t *testing.T) {
	cfg := testConfig(t)
	cfg.RemoteFiles = []string{"/a/b/1.root", "/a/b/2.root", "/a/b/3.root"}
	copier := &fakeCopier{}
	d := perFileDownloader(cfg, &fakeConnector{}, copier, &fakeQuery{})

	first, err := d.Download(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, first.Succeeded)
	assert.Equal(t, 0, first.Skipped)
	assert.Equal(t, 3, copier.copyCount())

	second, err := d.Download(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, second.Succeeded)
	assert.Equal(t, 3, second.Skipped, "second run must skip every present file")
	assert.Equal(t, 3, copier.copyCount(), "no re-fetch on the second run")
}

func TestDownloadMergesGlobResults(t *testing.T) {
	cfg := testConfig(t)
	cfg.RemoteFiles = []string{"/explicit/1.root"}
	cfg.RemoteGlobs = []models.GlobSpec{{Base: "/a", Pattern: "*.root"}}
	b := &recordingBackend{}
	query := &fakeQuery{results: map[string]string{"/a": "/a/2.root\n/a/3.root\n"}}
	conn := &fakeConnector{}
	d := newDownloader(cfg, b, conn, query, nil)

	result, err := d.Download(context.Background())
	require.NoError(t, err)

	require.Len(t, b.jobs, 3)
	assert.Equal(t, "/explicit/1.root", b.jobs[0].RemotePath)
	assert.Equal(t, "/a/2.root", b.jobs[1].RemotePath)
	assert.Equal(t, "/a/3.root", b.jobs[2].RemotePath)
	assert.Equal(t, 3, result.TotalFiles)
	// The glob session is opened once and closed before dispatch.
	assert.Equal(t, 1, conn.dials)
}

func TestDownloadGlobFailureIsNotFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.RemoteGlobs = []models.GlobSpec{
		{Base: "/bad", Pattern: "*.root"},
		{Base: "/good", Pattern: "*.root"},
	}
	b := &recordingBackend{}
	query := &fakeQuery{
		results: map[string]string{"/good": "/good/1.root\n"},
		errs:    map[string]error{"/bad": fmt.Errorf("server error")},
	}
	d := newDownloader(cfg, b, &fakeConnector{}, query, nil)

	result, err := d.Download(context.Background())
	require.NoError(t, err)

	require.Len(t, b.jobs, 1)
	assert.Equal(t, "/good/1.root", b.jobs[0].RemotePath)
	assert.Equal(t, 1, result.Succeeded)
}

func TestDownloadSessionFailureDisablesGlobsOnly(t *testing.T) {
	cfg := testConfig(t)
	cfg.RemoteFiles = []string{"/a/1.root"}
	cfg.RemoteGlobs = []models.GlobSpec{{Base: "/a", Pattern: "*.root"}}
	b := &recordingBackend{}
	conn := &fakeConnector{err: fmt.Errorf("no token")}
	d := newDownloader(cfg, b, conn, &fakeQuery{}, nil)

	result, err := d.Download(context.Background())
	require.NoError(t, err)

	require.Len(t, b.jobs, 1)
	assert.Equal(t, "/a/1.root", b.jobs[0].RemotePath)
	assert.Equal(t, 1, result.TotalFiles)
}

func TestDownloadRecordsMappingFailures(t *testing.T) {
	cfg := testConfig(t)
	cfg.RemoteFiles = []string{"///", "/a/1.root"}
	b := &recordingBackend{}
	d := newDownloader(cfg, b, &fakeConnector{}, &fakeQuery{}, nil)

	result, err := d.Download(context.Background())
	require.NoError(t, err)

	require.Len(t, b.jobs, 1, "the malformed entry is not dispatched")
	assert.Equal(t, 2, result.TotalFiles)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
}

func TestDownloadDuplicatesCollapseToSkip(t *testing.T) {
	cfg := testConfig(t)
	// Distinct remote paths mapping to the same local target: the
	// second job is absorbed by the existence check.
	keep := 0
	cfg.KeepDepth = &keep
	cfg.RemoteFiles = []string{"/x/f.root", "/z/f.root"}
	// One worker so the jobs run strictly in order.
	cfg.NumWorkers = 1
	copier := &fakeCopier{}
	d := perFileDownloader(cfg, &fakeConnector{}, copier, &fakeQuery{})

	result, err := d.Download(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, copier.copyCount())
}

func TestDownloadFlattenPaths(t *testing.T) {
	cfg := testConfig(t)
	cfg.FlattenPaths = true
	cfg.RemoteFiles = []string{"/x/y/f.root", "/z/y/f.root"}
	b := &recordingBackend{}
	d := newDownloader(cfg, b, &fakeConnector{}, &fakeQuery{}, nil)

	_, err := d.Download(context.Background())
	require.NoError(t, err)

	require.Len(t, b.jobs, 2)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "f.root"), b.jobs[0].LocalPath)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "y_f.root"), b.jobs[1].LocalPath)
}

func TestFindFiles(t *testing.T) {
	cfg := testConfig(t)
	cfg.RemoteGlobs = []models.GlobSpec{{Base: "/a", Pattern: "*.root"}}
	query := &fakeQuery{results: map[string]string{"/a": "/a/1.root\n"}}
	d := newDownloader(cfg, &recordingBackend{}, &fakeConnector{}, query, nil)

	files, err := d.FindFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/a/1.root"}, files)
}

func TestFindFilesSessionFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.RemoteGlobs = []models.GlobSpec{{Base: "/a", Pattern: "*.root"}}
	conn := &fakeConnector{err: fmt.Errorf("no token")}
	d := newDownloader(cfg, &recordingBackend{}, conn, &fakeQuery{}, nil)

	_, err := d.FindFiles(context.Background())
	assert.Error(t, err)
}

func TestNewRejectsMissingTools(t *testing.T) {
	cfg := testConfig(t)
	cfg.QueryCommand = "gridfetch-no-such-tool"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestLocalPathUsesMapper(t *testing.T) {
	cfg := testConfig(t)
	keep := 1
	cfg.KeepDepth = &keep
	d := newDownloader(cfg, &recordingBackend{}, &fakeConnector{}, &fakeQuery{}, nil)

	got, err := d.localPath("/a/b/c.root", map[string]struct{}{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "b", "c.root"), got)

	// Same input, same output.
	again, err := d.localPath("/a/b/c.root", map[string]struct{}{})
	require.NoError(t, err)
	assert.Equal(t, got, again)

	m := &pathmap.Mapper{OutputDir: cfg.OutputDir, KeepDepth: cfg.KeepDepth}
	direct, err := m.Map("/a/b/c.root")
	require.NoError(t, err)
	assert.Equal(t, direct, got)
}
