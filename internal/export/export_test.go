package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal(t *testing.T) {
	tests := []struct {
		name      string
		questions []string
		want      string
	}{
		{
			name:      "two questions",
			questions: []string{"q1", "q2"},
			want:      "[\n  \"q1\",\n  \"q2\"\n]",
		},
		{
			name:      "nil list",
			questions: nil,
			want:      "[]",
		},
		{
			name:      "html and unicode are kept verbatim",
			questions: []string{"Is a < b & c?", "Qu'est-ce que c'est ?"},
			want:      "[\n  \"Is a < b & c?\",\n  \"Qu'est-ce que c'est ?\"\n]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.questions)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshal_Idempotent(t *testing.T) {
	questions := []string{"q1", "q2"}

	first, err := Marshal(questions)
	require.NoError(t, err)
	second, err := Marshal(questions)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"q1", "q2"}, questions)
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := WriteFile(dir, []string{"q1"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "questions.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n  \"q1\"\n]", string(data))

	// overwrite and make sure no temp files are left behind
	_, err = WriteFile(dir, []string{"q2"})
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "questions.json", entries[0].Name())
}
