package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/david/tender-radar/internal/extract"
)

// Runs the extraction engine over a local notice text file and prints the
// result as JSON. Useful for checking a single notice without a database.
func main() {
	noticeID := flag.String("notice-id", "", "Notice ID used in log messages (defaults to the file name)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: extract_file [-notice-id ID] <notice.txt>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	content, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", path, err)
	}

	id := *noticeID
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	rec := extract.New().Extract(string(content), id)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}
