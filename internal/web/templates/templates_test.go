package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/sweeper/internal/core"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestErrorAlert_Escapes(t *testing.T) {
	out := render(t, ErrorAlert("<b>bad</b>", "Try again", "VAL001"))
	if strings.Contains(out, "<b>bad</b>") {
		t.Errorf("message not escaped: %s", out)
	}
	if !strings.Contains(out, "&lt;b&gt;bad&lt;/b&gt;") || !strings.Contains(out, "VAL001") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestDashboard_Empty(t *testing.T) {
	out := render(t, Layout("Data Sweeper", Dashboard(DashboardData{MaxFileSizeMB: 100})))
	for _, want := range []string{"<!DOCTYPE html>", `name="files"`, "No files loaded yet", "100 MB"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestDashboard_FileCard(t *testing.T) {
	data := DashboardData{
		Notice:           "Duplicates handled",
		PreviewRows:      core.PreviewHead,
		DefaultThreshold: 90,
		Files: []FileView{{
			Info:           core.FileInfo{Name: "q&a.csv", Rows: 2, Columns: 2, SizeKB: 0.5, Encoding: "utf-8"},
			Columns:        []string{"id", "note"},
			NumericColumns: []string{"id"},
			Preview:        [][]string{{"1", "hi"}, {"2", ""}},
			Missing:        []bool{false, false, false, true},
		}},
	}
	out := render(t, Dashboard(data))

	for _, want := range []string{
		"Duplicates handled",
		"q&amp;a.csv",
		"/api/files/q&amp;a.csv/duplicates",
		`<td class="missing">None</td>`,
		`name="threshold"`,
		`value="90"`,
		"/api/files/q&amp;a.csv/chart",
		"Download all as ZIP",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestFilePath(t *testing.T) {
	if got := FilePath("my file.csv", "/export"); got != "/api/files/my%20file.csv/export" {
		t.Errorf("FilePath() = %q", got)
	}
}
