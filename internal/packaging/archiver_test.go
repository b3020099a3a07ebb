package packaging

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakupscli/pkg/contracts/domain"
)

func packagingMeta() domain.RunMeta {
	return domain.RunMeta{
		RunID:           "run-7",
		ClientName:      "Acme Client",
		AnalysisDate:    time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC),
		TotalProperties: 100,
		LeaseCount:      35,
	}
}

func writeArtifact(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()
	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestPackager_Package(t *testing.T) {
	work := t.TempDir()
	out := t.TempDir()

	bundle := Bundle{
		SourceWorkbook: []byte("xlsx-bytes"),
		Charts: []string{
			writeArtifact(t, work, "analysis_01_bedroom_distribution.png", "png1"),
			writeArtifact(t, work, "analysis_08_lease_vs_sale.png", "png2"),
		},
		PDFs: []string{
			writeArtifact(t, work, "executive_summary.pdf", "pdf1"),
		},
		RadarName: "PropertyRadar_Acme_Client_2026-08-01.xlsx",
		RadarData: []byte("radar-bytes"),
		DataFiles: []string{
			writeArtifact(t, work, "analysis_results.json", "{}"),
			writeArtifact(t, work, "properties.csv", "a,b\n"),
		},
	}

	archive, err := NewPackager(nil).Package(context.Background(), packagingMeta(), bundle, out)
	require.NoError(t, err)

	assert.Equal(t, "Breakups_Report_Acme_Client_2026-08-01.zip", archive.FileName)
	assert.Equal(t, filepath.Join(out, archive.FileName), archive.Path)
	assert.Greater(t, archive.Size, int64(0))

	assert.True(t, archive.Contents.Excel)
	assert.Equal(t, 2, archive.Contents.Charts)
	assert.Equal(t, 1, archive.Contents.PDFs)
	assert.True(t, archive.Contents.PropertyRadar)
	assert.Equal(t, 2, archive.Contents.DataFiles)

	assert.Equal(t, []string{
		"PropertyRadar_Acme_Client_2026-08-01.xlsx",
		"README.txt",
		"Workbook_Acme_Client.xlsx",
		"analysis_01_bedroom_distribution.png",
		"analysis_08_lease_vs_sale.png",
		"analysis_results.json",
		"executive_summary.pdf",
		"properties.csv",
	}, zipNames(t, archive.Path))
}

func TestPackager_MissingArtifactIsSkippedNotFatal(t *testing.T) {
	work := t.TempDir()
	out := t.TempDir()

	bundle := Bundle{
		Charts: []string{
			writeArtifact(t, work, "analysis_01_bedroom_distribution.png", "png1"),
			filepath.Join(work, "analysis_02_hoa_fee_analysis.png"), // never written
		},
	}

	archive, err := NewPackager(nil).Package(context.Background(), packagingMeta(), bundle, out)
	require.NoError(t, err)

	assert.Equal(t, 1, archive.Contents.Charts)
	assert.False(t, archive.Contents.Excel)
	assert.False(t, archive.Contents.PropertyRadar)
	assert.Equal(t, []string{
		"README.txt",
		"analysis_01_bedroom_distribution.png",
	}, zipNames(t, archive.Path))
}

func TestPackager_UnwritableDirFails(t *testing.T) {
	_, err := NewPackager(nil).Package(context.Background(), packagingMeta(), Bundle{},
		filepath.Join(t.TempDir(), "does", "not", "exist"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create archive")
}

func TestBuildReadme(t *testing.T) {
	readme := BuildReadme(packagingMeta(), domain.PackageContents{
		Excel: true, Charts: 20, PDFs: 5, PropertyRadar: true, DataFiles: 2,
	})

	assert.Contains(t, readme, "Client:           Acme Client")
	assert.Contains(t, readme, "Run ID:           run-7")
	assert.Contains(t, readme, "Sale comps:       100")
	assert.Contains(t, readme, "Lease comps:      35")
	assert.Contains(t, readme, "Charts:               20")
	assert.Contains(t, readme, "PropertyRadar export: included")
}
