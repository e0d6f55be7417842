// Package excel reads analysis inputs from Excel workbooks or CSV files.
// Every matrix is expected fully formed: a header row of column labels and a
// leading label column, with the gene ordering matching the expression file.
package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"netpath/domain/expr"
	"netpath/domain/network"
	"netpath/domain/pathway"
	"netpath/internal/errors"
	"netpath/ports"
)

// DataReader handles reading Excel and CSV files
type DataReader struct{}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader() *DataReader {
	return &DataReader{}
}

var _ ports.DatasetReaderPort = (*DataReader)(nil)

// rows reads the full cell grid from a file. Excel files always use Sheet1.
func (r *DataReader) rows(path string) ([][]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("input file %s", path))
	}
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", path)
		}
		defer f.Close()
		reader := csv.NewReader(f)
		reader.FieldsPerRecord = -1
		records, err := reader.ReadAll()
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
		return records, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	records, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, errors.Wrapf(err, "reading Sheet1 of %s", path)
	}
	return records, nil
}

// ReadExpression reads a genes x samples matrix. The header row names the
// samples; each data row starts with the gene identifier.
func (r *DataReader) ReadExpression(path string) (*expr.Matrix, error) {
	records, err := r.rows(path)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, errors.DataFormat(fmt.Sprintf("%s: need a header row and at least one gene row", path))
	}
	samples := append([]string(nil), records[0][1:]...)
	m := &expr.Matrix{Samples: samples}
	for rowIdx, row := range records[1:] {
		if len(row) != len(samples)+1 {
			return nil, errors.DataFormat(fmt.Sprintf("%s row %d: %d cells, want %d", path, rowIdx+2, len(row), len(samples)+1))
		}
		m.Genes = append(m.Genes, strings.TrimSpace(row[0]))
		values := make([]float64, len(samples))
		for j, cell := range row[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.DataFormat(fmt.Sprintf("%s row %d col %d: %q is not numeric", path, rowIdx+2, j+2, cell))
			}
			values[j] = v
		}
		m.Data = append(m.Data, values)
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "expression matrix failed validation")
	}
	return m, nil
}

// ReadLabels reads sample,condition pairs and assembles them in the supplied
// sample ordering. Every sample must be labeled exactly once.
func (r *DataReader) ReadLabels(path string, samples []string) (expr.Labels, error) {
	records, err := r.rows(path)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int, len(samples))
	for rowIdx, row := range records {
		if rowIdx == 0 && len(row) >= 2 && !isInt(row[1]) {
			continue // header row
		}
		if len(row) < 2 {
			return nil, errors.DataFormat(fmt.Sprintf("%s row %d: want sample,condition", path, rowIdx+1))
		}
		name := strings.TrimSpace(row[0])
		cond, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, errors.DataFormat(fmt.Sprintf("%s row %d: condition %q is not an integer", path, rowIdx+1, row[1]))
		}
		if _, dup := byName[name]; dup {
			return nil, errors.DataFormat(fmt.Sprintf("%s: sample %q labeled twice", path, name))
		}
		byName[name] = cond
	}
	labels := make(expr.Labels, len(samples))
	for i, name := range samples {
		cond, ok := byName[name]
		if !ok {
			return nil, errors.DataFormat(fmt.Sprintf("%s: sample %q has no condition label", path, name))
		}
		labels[i] = cond
	}
	return labels, nil
}

// ReadIndicator reads the pathways x genes membership matrix. The header
// names the gene columns, which must match the expression gene ordering.
func (r *DataReader) ReadIndicator(path string, genes []string) (*pathway.IndicatorMatrix, error) {
	records, err := r.rows(path)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.DataFormat(fmt.Sprintf("%s: need a header row and at least one pathway row", path))
	}
	if len(records[0]) < 2 {
		return nil, errors.DataFormat(fmt.Sprintf("%s: header row has %d cells, want a pathway label and gene columns", path, len(records[0])))
	}
	b := &pathway.IndicatorMatrix{Genes: trimAll(records[0][1:])}
	for rowIdx, row := range records[1:] {
		entries, err := parseBinaryRow(path, rowIdx+2, row, len(b.Genes))
		if err != nil {
			return nil, err
		}
		b.Pathways = append(b.Pathways, strings.TrimSpace(row[0]))
		b.Rows = append(b.Rows, entries)
	}
	if err := b.Validate(genes); err != nil {
		return nil, errors.Wrap(err, "indicator matrix failed validation")
	}
	return b, nil
}

// ReadMask reads a genes x genes binary constraint mask with a gene header
// row and a gene label column, both in the expression ordering.
func (r *DataReader) ReadMask(path string, genes []string) (network.Mask, error) {
	records, err := r.rows(path)
	if err != nil {
		return nil, err
	}
	if len(records) != len(genes)+1 {
		return nil, errors.DataFormat(fmt.Sprintf("%s: %d rows, want %d", path, len(records), len(genes)+1))
	}
	if len(records[0]) < 2 {
		return nil, errors.DataFormat(fmt.Sprintf("%s: header row has %d cells, want a gene label and gene columns", path, len(records[0])))
	}
	header := trimAll(records[0][1:])
	if len(header) != len(genes) {
		return nil, errors.DataFormat(fmt.Sprintf("%s: %d gene columns, want %d", path, len(header), len(genes)))
	}
	for i, g := range genes {
		if header[i] != g {
			return nil, errors.DataFormat(fmt.Sprintf("%s: column %d is %q, expression has %q", path, i+2, header[i], g))
		}
	}
	mask := make(network.Mask, len(genes))
	for rowIdx, row := range records[1:] {
		if len(row) == 0 {
			return nil, errors.DataFormat(fmt.Sprintf("%s row %d: empty", path, rowIdx+2))
		}
		if strings.TrimSpace(row[0]) != genes[rowIdx] {
			return nil, errors.DataFormat(fmt.Sprintf("%s row %d: gene %q, expression has %q", path, rowIdx+2, row[0], genes[rowIdx]))
		}
		entries, err := parseBinaryRow(path, rowIdx+2, row, len(genes))
		if err != nil {
			return nil, err
		}
		mask[rowIdx] = entries
	}
	if err := mask.Validate(len(genes)); err != nil {
		return nil, errors.Wrap(err, "mask failed validation")
	}
	return mask, nil
}

func parseBinaryRow(path string, line int, row []string, want int) ([]int, error) {
	if len(row) != want+1 {
		return nil, errors.DataFormat(fmt.Sprintf("%s row %d: %d cells, want %d", path, line, len(row), want+1))
	}
	entries := make([]int, want)
	for j, cell := range row[1:] {
		v, err := strconv.Atoi(strings.TrimSpace(cell))
		if err != nil || (v != 0 && v != 1) {
			return nil, errors.DataFormat(fmt.Sprintf("%s row %d col %d: %q is not 0 or 1", path, line, j+2, cell))
		}
		entries[j] = v
	}
	return entries, nil
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func isInt(s string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil
}
