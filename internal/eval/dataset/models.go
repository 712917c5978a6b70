package dataset

import (
	"path/filepath"
	"strings"
)

// Item is one labelled cover photo. ImagePath is relative to the dataset
// file unless absolute; ImageURL is used when no path is given, then the
// Open Library cover for ISBN.
type Item struct {
	ID        string `json:"id" yaml:"id" parquet:"id"`
	ImagePath string `json:"image_path" yaml:"image_path" parquet:"image_path,optional"`
	ImageURL  string `json:"image_url,omitempty" yaml:"image_url,omitempty" parquet:"image_url,optional"`
	Title     string `json:"title" yaml:"title" parquet:"title"`
	Author    string `json:"author" yaml:"author" parquet:"author,optional"`
	ISBN      string `json:"isbn" yaml:"isbn" parquet:"isbn,optional"`
}

// ResolvePath returns the image path anchored at the dataset directory
func (i Item) ResolvePath(datasetDir string) string {
	if i.ImagePath == "" || filepath.IsAbs(i.ImagePath) {
		return i.ImagePath
	}
	return filepath.Join(datasetDir, i.ImagePath)
}

// CleanISBN removes hyphens and spaces
func (i Item) CleanISBN() string {
	return strings.ToUpper(strings.NewReplacer("-", "", " ", "").Replace(i.ISBN))
}
