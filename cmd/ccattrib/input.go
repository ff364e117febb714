package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/coolbeans/ccattrib/pkg/rdf"
)

// maxParallelReads bounds how many statement files are parsed at once.
const maxParallelReads = 4

// expandInputs resolves doublestar patterns to a sorted, de-duplicated file
// list. Arguments without glob metacharacters must name existing files.
func expandInputs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			if _, err := os.Stat(pattern); err != nil {
				return nil, fmt.Errorf("statement file not found: %s", pattern)
			}
			if !seen[pattern] {
				seen[pattern] = true
				files = append(files, pattern)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				files = append(files, match)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// freshnessToken derives a document token from the modification times and
// sizes of its statement files.
func freshnessToken(files []string) (string, error) {
	var latest time.Time
	var size int64
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", file, err)
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
		size += info.Size()
	}
	return latest.UTC().Format(time.RFC3339Nano) + "/" + strconv.FormatInt(size, 10), nil
}

// readStatementFiles parses files in parallel and concatenates their
// statements in file order.
func readStatementFiles(ctx context.Context, files []string) ([]rdf.Statement, error) {
	results := make([][]rdf.Statement, len(files))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(maxParallelReads)

	for index, file := range files {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			statements, err := readStatementFile(file)
			if err != nil {
				return err
			}
			results[index] = statements
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	var statements []rdf.Statement
	for _, fileStatements := range results {
		statements = append(statements, fileStatements...)
	}
	return statements, nil
}

func readStatementFile(path string) ([]rdf.Statement, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	statements, err := rdf.ReadNTriples(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return statements, nil
}
