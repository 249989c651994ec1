package utils

import (
	"encoding/csv"
	"fmt"
	"sort"

	"github.com/facette/natsort"
)

// CSV rows are ordered naturally by their first column.
type CSV [][]string

func (data CSV) Less(i, j int) bool {
	return natsort.Compare(data[i][0], data[j][0])
}

func (data CSV) Len() int {
	return len(data)
}
func (data CSV) Swap(i, j int) {
	data[i], data[j] = data[j], data[i]
}

func WriteAsCSV(data CSV, path, subpath, filename string, columns []string) (string, error) {
	clearName := GetFilename(filename)
	file, err := OpenFile(true, path, subpath, clearName)
	if err != nil {
		return "", fmt.Errorf("unable to save %s: %w", clearName, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	sort.Sort(data)
	if err := w.Write(columns); err != nil {
		return "", err
	}
	if err := w.WriteAll(data); err != nil {
		return "", err
	}
	return file.Name(), file.Close()
}
