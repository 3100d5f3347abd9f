package corpus

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"dinotidus/pkg/neural"
)

// PairRecord is the parquet row layout of a training pair.
type PairRecord struct {
	Question string `parquet:"name=question, type=BYTE_ARRAY, convertedtype=UTF8"`
	Answer   string `parquet:"name=answer, type=BYTE_ARRAY, convertedtype=UTF8"`
}

func readParquet(filePath string) ([]neural.Pair, error) {
	fr, err := local.NewLocalFileReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(PairRecord), 2)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pr.ReadStop()

	numRows := int(pr.GetNumRows())
	if numRows == 0 {
		return nil, nil
	}

	records := make([]PairRecord, numRows)
	if err := pr.Read(&records); err != nil {
		return nil, fmt.Errorf("failed to read parquet records: %w", err)
	}

	pairs := make([]neural.Pair, len(records))
	for i, r := range records {
		pairs[i] = neural.Pair{Question: r.Question, Answer: r.Answer}
	}
	return pairs, nil
}

func writeParquet(filePath string, pairs []neural.Pair) error {
	fw, err := local.NewLocalFileWriter(filePath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(PairRecord), 2)
	if err != nil {
		return fmt.Errorf("failed to create Parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, p := range pairs {
		if err := pw.Write(PairRecord{Question: p.Question, Answer: p.Answer}); err != nil {
			return fmt.Errorf("failed to write parquet record: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
