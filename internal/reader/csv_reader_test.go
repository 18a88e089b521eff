package reader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVReader_Read(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		opts   []CSVOption
		header []string
		rows   [][]string
	}{
		{
			name:   "comma separated",
			data:   "a,b\n1,2\n3, 4\n",
			header: []string{"a", "b"},
			rows:   [][]string{{"1", "2"}, {"3", "4"}},
		},
		{
			name:   "semicolon with comments",
			data:   "# exported\nx;y\n1;NA\n",
			opts:   []CSVOption{WithDelimiter(';'), WithComment('#')},
			header: []string{"x", "y"},
			rows:   [][]string{{"1", "NA"}},
		},
		{
			name:   "header only",
			data:   "a,b\n",
			header: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := NewCSVReader(strings.NewReader(tt.data), tt.opts...).Read()
			require.NoError(t, err)
			assert.Equal(t, tt.header, recs.Header)
			assert.Equal(t, tt.rows, recs.Rows)
		})
	}
}

func TestCSVReader_Errors(t *testing.T) {
	_, err := NewCSVReader(strings.NewReader("")).Read()
	assert.ErrorContains(t, err, "missing header")

	_, err = NewCSVReader(strings.NewReader("a,b\n1,2\n3\n")).Read()
	assert.ErrorContains(t, err, "csv row 2")
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n1\n"), 0644))

	recs, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1"}}, recs.Rows)

	_, err = ReadCSVFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
