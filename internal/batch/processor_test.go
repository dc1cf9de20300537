package batch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadBatchFile(t *testing.T) {
	tests := []struct {
		name        string
		fileContent string
		want        []string
	}{
		{
			name:        "empty file",
			fileContent: "",
			want:        nil,
		},
		{
			name:        "only whitespace",
			fileContent: "   \n\t\r\n   ",
			want:        nil,
		},
		{
			name: "one declaration per line",
			fileContent: `int x
char *p
static foo`,
			want: []string{"int x", "char *p", "static foo"},
		},
		{
			name: "comments and blank lines",
			fileContent: `# pointers
char *p

  # arrays
int a[10]  
`,
			want: []string{"char *p", "int a[10]"},
		},
		{
			name:        "windows line endings",
			fileContent: "int x\r\nchar *p\r\n",
			want:        []string{"int x", "char *p"},
		},
		{
			name:        "inner whitespace kept",
			fileContent: "int   (*fp)(void)",
			want:        []string{"int   (*fp)(void)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpFile := filepath.Join(t.TempDir(), "queries.txt")
			if err := os.WriteFile(tmpFile, []byte(tt.fileContent), 0644); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}

			got, err := ReadBatchFile(tmpFile)
			if err != nil {
				t.Fatalf("ReadBatchFile() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadBatchFile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadBatchFile_FileNotFound(t *testing.T) {
	_, err := ReadBatchFile("/nonexistent/file.txt")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}
