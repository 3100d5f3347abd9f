// Package corpus reads and writes question/answer training sets.
package corpus

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"dinotidus/pkg/neural"
)

const (
	FormatJSON    = "json"
	FormatJSONL   = "jsonl"
	FormatCSV     = "csv"
	FormatYAML    = "yaml"
	FormatParquet = "parquet"
)

// ErrEmpty is returned for a corpus without any pairs.
var ErrEmpty = errors.New("corpus contains no pairs")

// detectFileType determines the corpus format from the extension, falling
// back to the parquet magic bytes and the first non-blank character.
func detectFileType(filePath string) string {
	if format := formatFromExt(filePath); format != "" {
		return format
	}

	file, err := os.Open(filePath)
	if err != nil {
		return "unknown"
	}
	defer file.Close()

	header := make([]byte, 512)
	n, err := io.ReadFull(file, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "unknown"
	}
	header = header[:n]

	// Parquet files start with "PAR1" magic bytes
	if bytes.HasPrefix(header, []byte("PAR1")) {
		return FormatParquet
	}

	switch trimmed := bytes.TrimSpace(header); {
	case bytes.HasPrefix(trimmed, []byte("[")):
		return FormatJSON
	case bytes.HasPrefix(trimmed, []byte("{")):
		return FormatJSONL
	case bytes.HasPrefix(trimmed, []byte("-")):
		return FormatYAML
	}
	return FormatCSV
}

func formatFromExt(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".parquet":
		return FormatParquet
	case ".json":
		return FormatJSON
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".csv":
		return FormatCSV
	case ".yaml", ".yml":
		return FormatYAML
	}
	return ""
}

// Load reads a corpus file in any supported format.
func Load(path string) ([]neural.Pair, error) {
	var (
		pairs []neural.Pair
		err   error
	)
	switch format := detectFileType(path); format {
	case FormatParquet:
		pairs, err = readParquet(path)
	case FormatJSON, FormatJSONL, FormatCSV, FormatYAML:
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus: %w", err)
		}
		pairs, err = decode(format, data)
	default:
		return nil, fmt.Errorf("failed to open corpus %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus %s: %w", path, err)
	}

	if err := validate(pairs); err != nil {
		return nil, fmt.Errorf("invalid corpus %s: %w", path, err)
	}
	return pairs, nil
}

func decode(format string, data []byte) ([]neural.Pair, error) {
	var pairs []neural.Pair
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &pairs); err != nil {
			return nil, err
		}
	case FormatJSONL:
		scanner := bufio.NewScanner(bytes.NewReader(data))
		scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			var p neural.Pair
			if err := json.Unmarshal([]byte(text), &p); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			pairs = append(pairs, p)
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &pairs); err != nil {
			return nil, err
		}
	case FormatCSV:
		return decodeCSV(data)
	}
	return pairs, nil
}

func decodeCSV(data []byte) ([]neural.Pair, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && strings.EqualFold(records[0][0], "question") && strings.EqualFold(records[0][1], "answer") {
		records = records[1:]
	}
	pairs := make([]neural.Pair, 0, len(records))
	for _, rec := range records {
		pairs = append(pairs, neural.Pair{Question: rec[0], Answer: rec[1]})
	}
	return pairs, nil
}

func validate(pairs []neural.Pair) error {
	if len(pairs) == 0 {
		return ErrEmpty
	}
	for i, p := range pairs {
		if strings.TrimSpace(p.Question) == "" || strings.TrimSpace(p.Answer) == "" {
			return fmt.Errorf("pair %d: question and answer are required", i+1)
		}
	}
	return nil
}

// Save writes pairs in the format implied by the extension of path.
func Save(path string, pairs []neural.Pair) error {
	format := formatFromExt(path)
	if format == FormatParquet {
		return writeParquet(path, pairs)
	}

	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(pairs); err != nil {
			return fmt.Errorf("failed to encode corpus: %w", err)
		}
	case FormatJSONL:
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		for _, p := range pairs {
			if err := enc.Encode(p); err != nil {
				return fmt.Errorf("failed to encode corpus: %w", err)
			}
		}
	case FormatYAML:
		if err := yaml.NewEncoder(&buf).Encode(pairs); err != nil {
			return fmt.Errorf("failed to encode corpus: %w", err)
		}
	case FormatCSV:
		w := csv.NewWriter(&buf)
		_ = w.Write([]string{"question", "answer"})
		for _, p := range pairs {
			_ = w.Write([]string{p.Question, p.Answer})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("failed to encode corpus: %w", err)
		}
	default:
		return fmt.Errorf("unsupported corpus format for %s", path)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	return nil
}
