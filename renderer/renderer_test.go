package renderer

import (
	"bytes"
	"embed"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/*.json
var testcasesFS embed.FS

//go:embed testdata/*.md
var testcasesGoldenFS embed.FS

var fixPartials = flag.Bool("fix-partials", false, "if true, update failing partial test case .md files with the received output")

func TestFixPartialsIsOff(t *testing.T) {
	if *fixPartials {
		t.Fatal("-fix-partials is enabled. This flag should only be used for updating test fixtures and must be disabled for regular tests.")
	}
}

func TestTemplatePartials(t *testing.T) {
	testCases := []struct {
		name       string
		structFile string
		goldenFile string
	}{
		{name: "report_title", structFile: "testdata/report.json", goldenFile: "testdata/report_title.md"},
		{name: "report_kpis", structFile: "testdata/report.json", goldenFile: "testdata/report_kpis.md"},
		{name: "report_waterfall", structFile: "testdata/report.json", goldenFile: "testdata/report_waterfall.md"},
		{name: "report_rollforward", structFile: "testdata/report.json", goldenFile: "testdata/report_rollforward.md"},
		{name: "report_segments", structFile: "testdata/report.json", goldenFile: "testdata/report_segments.md"},
	}

	// --- Coverage Check ---
	set := parseTemplates(t)
	tested := make(map[string]struct{})
	usedGoldens := make(map[string]struct{})
	for _, tc := range testCases {
		tested[tc.name+".md"] = struct{}{}
		usedGoldens[tc.goldenFile] = struct{}{}
	}
	for _, partialFile := range set.partials {
		if _, ok := tested[partialFile]; !ok {
			t.Errorf("untested template partial found: %s. Please add a test case to TestTemplatePartials.", partialFile)
		}
	}
	for _, goldenFile := range set.partialGoldens {
		if _, ok := usedGoldens["testdata/"+goldenFile]; !ok {
			t.Errorf("unused partial golden file found: %s. Please remove it or add a test case.", goldenFile)
		}
	}
	for _, f := range set.orphans {
		t.Errorf("orphan test file found: %s. It does not match any known template.", f)
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := readReport(t, tc.structFile)

			templateFile := tc.name + ".md"
			templateContent, err := fs.ReadFile(templates, templateFile)
			if err != nil {
				t.Fatalf("failed to read template file %q: %v", templateFile, err)
			}
			tmpl, err := template.New(tc.name).Parse(string(templateContent))
			if err != nil {
				t.Fatalf("failed to parse template %q: %v", templateFile, err)
			}
			var rendered bytes.Buffer
			if err := tmpl.Execute(&rendered, data); err != nil {
				t.Fatalf("failed to execute template %q: %v", templateFile, err)
			}
			checkGolden(t, tc.name, tc.goldenFile, rendered.String())
		})
	}
}

func TestReportRendering(t *testing.T) {
	set := parseTemplates(t)
	assert.Equal(t, []string{"report.md"}, set.assemblies)

	data := readReport(t, "testdata/report.json")
	checkGolden(t, "report", "testdata/report_assembly.md", RenderReport(data))
}

// readReport decodes a report view fixture.
func readReport(t *testing.T, structFile string) *Report {
	t.Helper()
	jsonData, err := testcasesFS.ReadFile(structFile)
	if err != nil {
		t.Fatalf("failed to read struct file %q: %v", structFile, err)
	}
	var r Report
	if err := json.Unmarshal(jsonData, &r); err != nil {
		t.Fatalf("failed to unmarshal struct data from %q: %v", structFile, err)
	}
	return &r
}

// checkGolden compares got with the golden file, and rewrites the golden file
// in -fix-partials mode.
func checkGolden(t *testing.T, name, goldenFile, got string) {
	t.Helper()
	goldenData, err := fs.ReadFile(testcasesGoldenFS, goldenFile)
	if err != nil {
		if os.IsNotExist(err) && *fixPartials {
			// Do not return the received output otherwise the golden never gets fixed.
			goldenData = []byte{}
		} else {
			t.Fatalf("failed to read golden file %q: %v", goldenFile, err)
		}
	}
	want := string(goldenData)
	if got == want {
		return
	}
	if !*fixPartials {
		t.Errorf("output mismatch for %s:\n--- want\n+++ got\n%s", name, createDiff(want, got))
		return
	}
	if err := os.MkdirAll(filepath.Dir(goldenFile), 0755); err != nil {
		t.Fatalf("failed to create testdata directory: %v", err)
	}
	if err := os.WriteFile(goldenFile, []byte(got), 0644); err != nil {
		t.Fatalf("failed to write updated golden file %q: %v", goldenFile, err)
	}
	t.Logf("updated golden file %s", goldenFile)
}

func createDiff(want, got string) string {
	// A simple diff-like representation for clearer test failures.
	return fmt.Sprintf("-%s\n+%s", strings.ReplaceAll(want, "\n", "\n-"), strings.ReplaceAll(got, "\n", "\n+"))
}

// templateSet describes the discovered templates from the filesystem.
type templateSet struct {
	// assemblies is a list of all assembly template files (e.g., "report.md").
	assemblies []string
	// partials is a list of all partial template files (e.g., "report_title.md").
	partials []string

	partialGoldens []string
	// orphans are test files that don't match any known template.
	orphans []string
}

// parseTemplates scans the embedded filesystem for .md files and categorizes
// them as either assembly templates or partial templates. A template is a
// partial of another when its name is prefixed by the other's name.
func parseTemplates(t *testing.T) templateSet {
	t.Helper()

	templateFiles, err := templates.ReadDir(".")
	require.NoError(t, err)

	var set templateSet
	var names []string
	for _, file := range templateFiles {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".md") {
			names = append(names, file.Name())
		}
	}

	partialBase := make(map[string]struct{})
	assemblyBase := make(map[string]struct{})
	for _, name1 := range names {
		base1 := strings.TrimSuffix(name1, ".md")
		isPartial := false
		for _, name2 := range names {
			if name1 != name2 && strings.HasPrefix(base1, strings.TrimSuffix(name2, ".md")+"_") {
				isPartial = true
				break
			}
		}
		if isPartial {
			set.partials = append(set.partials, name1)
			partialBase[base1] = struct{}{}
		} else {
			set.assemblies = append(set.assemblies, name1)
			assemblyBase[base1] = struct{}{}
		}
	}

	structFiles, _ := testcasesFS.ReadDir("testdata")
	for _, f := range structFiles {
		base := strings.TrimSuffix(f.Name(), ".json")
		_, partial := partialBase[base]
		_, assembly := assemblyBase[base]
		if !partial && !assembly {
			set.orphans = append(set.orphans, f.Name())
		}
	}

	goldenFiles, _ := testcasesGoldenFS.ReadDir("testdata")
	for _, f := range goldenFiles {
		base := strings.TrimSuffix(f.Name(), ".md")
		if _, ok := partialBase[base]; ok {
			set.partialGoldens = append(set.partialGoldens, f.Name())
		} else if _, ok := assemblyBase[strings.TrimSuffix(base, "_assembly")]; !ok {
			set.orphans = append(set.orphans, f.Name())
		}
	}
	return set
}
