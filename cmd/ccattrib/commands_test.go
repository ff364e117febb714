package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coolbeans/ccattrib/pkg/license"
)

const (
	testPage  = "http://example.org/gallery"
	testImage = "http://example.org/img.jpg"
)

const galleryNTriples = `# gallery page
<http://example.org/gallery> <http://www.w3.org/1999/xhtml/vocab#license> <http://creativecommons.org/licenses/by-nc-sa/3.0/> .
<http://example.org/img.jpg> <http://purl.org/dc/terms/title> "Photo" .
<http://example.org/img.jpg> <http://creativecommons.org/ns#attributionName> "Jane" .
<http://example.org/img.jpg> <http://creativecommons.org/ns#license> <http://creativecommons.org/licenses/by/4.0/> .
`

type testEnv struct {
	dir    string
	dbPath string
	config string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)

	configPath := filepath.Join(dir, "ccattrib.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log:\n  level: error\n"), 0o644))

	return testEnv{
		dir:    dir,
		dbPath: filepath.Join(dir, "snapshot.db"),
		config: configPath,
	}
}

func (env testEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(env.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (env testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--db", env.dbPath, "--config", env.config}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestAnalyzeThenAttribution(t *testing.T) {
	env := newTestEnv(t)
	file := env.writeFile(t, "gallery.nt", galleryNTriples)

	out, err := env.run(t, "analyze", file, "--url", testPage)
	require.NoError(t, err)
	assert.Contains(t, out, "Analyzed "+testPage+" from 1 file(s)")
	assert.Contains(t, out, "2 licensed objects")

	// A fresh invocation restores the page from the snapshot.
	out, err = env.run(t, "attribution", testPage, testImage, "--format", "text")
	require.NoError(t, err)
	assert.Equal(t, "Photo (http://example.org/img.jpg) / Jane / CC BY 4.0 (http://creativecommons.org/licenses/by/4.0/)\n", out)

	out, err = env.run(t, "attribution", testPage, "--format", "html")
	require.NoError(t, err)
	assert.Contains(t, out, `<a rel="license" href="http://creativecommons.org/licenses/by/4.0/">CC BY 4.0</a>`)
	assert.Contains(t, out, `CC BY-NC-SA 3.0`)
}

func TestAnalyzeRequiresURL(t *testing.T) {
	env := newTestEnv(t)
	file := env.writeFile(t, "gallery.nt", galleryNTriples)

	_, err := env.run(t, "analyze", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--url")
}

func TestAnalyzeSyntaxError(t *testing.T) {
	env := newTestEnv(t)
	file := env.writeFile(t, "broken.nt", "<http://example.org/a> <http://example.org/b>\n")

	_, err := env.run(t, "analyze", file, "--url", testPage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.nt")
}

func TestSubjects(t *testing.T) {
	env := newTestEnv(t)
	file := env.writeFile(t, "gallery.nt", galleryNTriples)

	_, err := env.run(t, "analyze", file, "--url", testPage)
	require.NoError(t, err)

	out, err := env.run(t, "subjects", testPage)
	require.NoError(t, err)
	assert.Contains(t, out, "Photo")
	assert.Contains(t, out, "Current page")
	assert.Contains(t, out, "CC BY 4.0 [permissive]")
	assert.Contains(t, out, "CC BY-NC-SA 3.0 [restricted]")
	assert.Contains(t, out, "2 licensed objects")
}

func TestSubjectsNotAnalyzed(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "subjects", testPage)
	assert.Error(t, err)
}

func TestAttributionUnsupportedFormat(t *testing.T) {
	env := newTestEnv(t)
	file := env.writeFile(t, "gallery.nt", galleryNTriples)

	_, err := env.run(t, "analyze", file, "--url", testPage)
	require.NoError(t, err)

	_, err = env.run(t, "attribution", testPage, "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)
	file := env.writeFile(t, "gallery.nt", galleryNTriples)

	_, err := env.run(t, "analyze", file, "--url", testPage)
	require.NoError(t, err)

	out, err := env.run(t, "export", testPage, "--format", "ntriples")
	require.NoError(t, err)
	assert.Contains(t, out, `<http://example.org/img.jpg> <http://purl.org/dc/terms/title> "Photo" .`)

	out, err = env.run(t, "export", testPage)
	require.NoError(t, err)
	assert.Contains(t, out, "@prefix")
	assert.Contains(t, out, `"Photo"`)
}

func TestForget(t *testing.T) {
	env := newTestEnv(t)
	file := env.writeFile(t, "gallery.nt", galleryNTriples)

	_, err := env.run(t, "analyze", file, "--url", testPage)
	require.NoError(t, err)

	out, err := env.run(t, "forget", testPage)
	require.NoError(t, err)
	assert.Contains(t, out, "Forgot "+testPage)

	out, err = env.run(t, "forget", testPage)
	require.NoError(t, err)
	assert.Contains(t, out, "Not analyzed: "+testPage)

	_, err = env.run(t, "subjects", testPage)
	assert.Error(t, err)
}

func TestLicense(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "license", "http://creativecommons.org/licenses/by/4.0/legalcode")
	require.NoError(t, err)
	assert.Contains(t, out, "http://creativecommons.org/licenses/by/4.0/")
	assert.Contains(t, out, "Attribution 4.0 International")
	assert.Contains(t, out, "CC BY 4.0")
	assert.Contains(t, out, "permissive (green)")
}

func TestLicenseNotCreativeCommons(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "license", "http://example.org/my-license")
	require.NoError(t, err)
	assert.Contains(t, out, "http://example.org/my-license")
	assert.Contains(t, out, "unknown")
}

func TestDocumentLookup(t *testing.T) {
	a := &app{logger: zap.NewNop()}
	catalog := license.NewCatalog()
	uri := "http://creativecommons.org/licenses/by/4.0/"

	t.Run("document title wins", func(t *testing.T) {
		document := license.LookupFunc(func(context.Context, string) (license.Details, error) {
			return license.Details{Name: "Deed - Attribution 4.0 International"}, nil
		})

		details, err := a.documentLookup(catalog, document).Lookup(context.Background(), uri)
		require.NoError(t, err)
		assert.Equal(t, license.Details{Name: "Deed - Attribution 4.0 International", Identifier: "CC BY 4.0"}, details)
	})

	t.Run("catalog fallback", func(t *testing.T) {
		document := license.LookupFunc(func(context.Context, string) (license.Details, error) {
			return license.Details{}, errors.New("offline")
		})

		details, err := a.documentLookup(catalog, document).Lookup(context.Background(), uri)
		require.NoError(t, err)
		assert.Equal(t, "Attribution 4.0 International", details.Name)
	})

	t.Run("both fail", func(t *testing.T) {
		document := license.LookupFunc(func(context.Context, string) (license.Details, error) {
			return license.Details{}, errors.New("offline")
		})

		_, err := a.documentLookup(catalog, document).Lookup(context.Background(), "http://example.org/my-license")
		assert.EqualError(t, err, "offline")
	})
}

func TestConfigShow(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "max_documents: 256")
	assert.Contains(t, out, "level: error")
}

func TestConfigInit(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "config", "init")
	require.NoError(t, err)

	path := filepath.Join(env.dir, ".config", "ccattrib", "config.yaml")
	assert.Contains(t, out, path)
	assert.FileExists(t, path)
}

func TestMetricsFlag(t *testing.T) {
	env := newTestEnv(t)
	file := env.writeFile(t, "gallery.nt", galleryNTriples)

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--db", env.dbPath, "--config", env.config, "--metrics", "analyze", file, "--url", testPage})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, stderr.String(), "# TYPE")
}

func TestEvictedSnapshotIsReloaded(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.config, []byte("log:\n  level: error\ncache:\n  max_documents: 1\n"), 0o644))

	otherPage := "http://example.org/other"
	gallery := env.writeFile(t, "gallery.nt", galleryNTriples)
	other := env.writeFile(t, "other.nt",
		"<http://example.org/other> <http://www.w3.org/1999/xhtml/vocab#license> <http://creativecommons.org/publicdomain/zero/1.0/> .\n")

	_, err := env.run(t, "analyze", gallery, "--url", testPage)
	require.NoError(t, err)
	_, err = env.run(t, "analyze", other, "--url", otherPage)
	require.NoError(t, err)

	// Only one page fits the cache after restore; both must still answer.
	out, err := env.run(t, "subjects", testPage)
	require.NoError(t, err)
	assert.Contains(t, out, "2 licensed objects")

	out, err = env.run(t, "attribution", otherPage, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "CC0 1.0")

	out, err = env.run(t, "export", testPage, "--format", "ntriples")
	require.NoError(t, err)
	assert.Contains(t, out, `"Photo"`)
}
