package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dinotidus/pkg/neural"
)

var samplePairs = []neural.Pair{
	{Question: "привет", Answer: "Привет! Как дела?"},
	{Question: "что такое \"нейросеть\", а?", Answer: "Сеть, которая учится"},
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"c.json", "c.jsonl", "c.csv", "c.yaml", "c.parquet"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(path, samplePairs))

			pairs, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, samplePairs, pairs)
		})
	}
}

func TestDetectFileType(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
		return p
	}

	assert.Equal(t, FormatParquet, detectFileType(write("a.parquet", "")))
	assert.Equal(t, FormatYAML, detectFileType(write("a.yml", "")))
	assert.Equal(t, FormatParquet, detectFileType(write("blob", "PAR1xxxx")))
	assert.Equal(t, FormatJSON, detectFileType(write("arr", "  [{}]")))
	assert.Equal(t, FormatJSONL, detectFileType(write("lines", "{}\n{}")))
	assert.Equal(t, FormatYAML, detectFileType(write("list", "- question: a\n  answer: b\n")))
	assert.Equal(t, FormatCSV, detectFileType(write("table", "a,b\n")))
	assert.Equal(t, "unknown", detectFileType(filepath.Join(dir, "missing")))
}

func TestLoadWithoutExtension(t *testing.T) {
	src := filepath.Join(t.TempDir(), "c.parquet")
	require.NoError(t, Save(src, samplePairs))
	data, err := os.ReadFile(src)
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "corpus")
	require.NoError(t, os.WriteFile(dst, data, 0644))

	pairs, err := Load(dst)
	require.NoError(t, err)
	assert.Equal(t, samplePairs, pairs)
}

func TestLoadCSVWithoutHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.csv")
	require.NoError(t, os.WriteFile(path, []byte("привет, Привет!\nпока,До встречи\n"), 0644))

	pairs, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []neural.Pair{
		{Question: "привет", Answer: "Привет!"},
		{Question: "пока", Answer: "До встречи"},
	}, pairs)
}

func TestLoadRejectsBadCorpora(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"empty.json":  "[]",
		"broken.json": "[{",
		"blank.jsonl": "{\"question\":\"a\",\"answer\":\"\"}\n",
		"bad.jsonl":   "{\"question\":\"a\"}\nnope\n",
		"ragged.csv":  "a,b,c\n",
		"header.csv":  "question,answer\n",
		"scalar.yaml": "hello",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	_, err = Load(empty)
	assert.ErrorIs(t, err, ErrEmpty)

	assert.Error(t, Save(filepath.Join(dir, "out.txt"), samplePairs))
}

func TestDefault(t *testing.T) {
	pairs := Default()
	require.NotEmpty(t, pairs)
	assert.Equal(t, neural.Pair{Question: "привет", Answer: "Привет! Как дела?"}, pairs[0])

	pairs[0].Question = "changed"
	assert.Equal(t, "привет", Default()[0].Question)

	n, err := neural.New(neural.DefaultConfig())
	require.NoError(t, err)
	n.TrainBatch(Default())
	assert.NotZero(t, n.Vocabulary().Lookup("нейросеть"))
}
