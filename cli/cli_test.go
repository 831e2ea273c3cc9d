package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/auth"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/series"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

const primaryEnergyCSV = `dimension,type,group_type,group_name,category,year,value
byEnergyFamily,Production,group,World,Oil,2000,10
byEnergyFamily,Production,group,World,Oil,2001,11
byEnergyFamily,Production,group,World,Coal,2001,30
total,Production,group,World,,2000,40
total,Production,group,World,,2001,50
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(&out, utils.NewLoggerTo(io.Discard))
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"primary-energy.csv": primaryEnergyCSV,
		"primary-energy.md":  "Source: test fixture",
		"unknown.csv":        "dimension,group_name,year\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestImportThenChartOptions(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "portal.db")
	out, err := run(t, "--sqlite", dbPath, "import", writeDataDir(t))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	var report series.ImportReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report %q: %v", out, err)
	}
	if report.Rows != 5 || report.Inserted != 5 || report.Notes != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Files) != 2 {
		t.Fatalf("unknown dataset files must be skipped, got %v", report.Files)
	}

	out, err = run(t, "--sqlite", dbPath, "chart-options", "--dataset", "primary-energy", "--query", "?dimension=total&group-names=World")
	if err != nil {
		t.Fatalf("chart-options: %v", err)
	}
	if !strings.Contains(out, `"credits"`) || !strings.Contains(out, "World") {
		t.Fatalf("unexpected options %s", out)
	}

	if _, err := run(t, "--sqlite", dbPath, "chart-options", "--dataset", "nope"); err == nil {
		t.Fatalf("expected unknown dataset error")
	}
}

func TestChartOptionsFromInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	in := `{"chartType":"line","unit":"%","categories":["2000","2001"],"series":[{"name":"Oil","color":"#BC301A","data":[1,2]}]}`
	if err := os.WriteFile(path, []byte(in), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := run(t, "chart-options", "--input", path)
	if err != nil {
		t.Fatalf("chart-options: %v", err)
	}
	if !strings.Contains(out, `"max":100`) {
		t.Fatalf("expected percent max in %s", out)
	}
	if _, err := run(t, "chart-options"); err == nil {
		t.Fatalf("expected error without dataset or input")
	}
}

func TestHashKeyOutputVerifies(t *testing.T) {
	out, err := run(t, "hash-key", "--key", "s3cret-admin-key", "--pepper", "pep")
	if err != nil {
		t.Fatalf("hash-key: %v", err)
	}
	var block struct {
		Admin auth.KeyHash `yaml:"admin"`
	}
	if err := yaml.Unmarshal([]byte(out), &block); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	ok, err := auth.VerifyKey("s3cret-admin-key", "pep", &block.Admin)
	if err != nil || !ok {
		t.Fatalf("expected key to verify: ok=%v err=%v", ok, err)
	}
	if ok, _ := auth.VerifyKey("s3cret-admin-key", "other", &block.Admin); ok {
		t.Fatalf("wrong pepper must not verify")
	}

	out, err = run(t, "hash-key")
	if err != nil {
		t.Fatalf("hash-key generated: %v", err)
	}
	if !strings.HasPrefix(out, "# generated key, store it now: ") {
		t.Fatalf("expected generated key line, got %q", out)
	}
}

func TestMigrateReportsStatus(t *testing.T) {
	out, err := run(t, "--sqlite", filepath.Join(t.TempDir(), "portal.db"), "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	var status struct {
		HasPending     bool  `json:"has_pending"`
		CurrentVersion int64 `json:"current_version"`
	}
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if status.HasPending || status.CurrentVersion == 0 {
		t.Fatalf("expected applied migrations, got %+v", status)
	}
}
