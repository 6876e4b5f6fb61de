package badlist_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wormwatch/wormwatch-cli/api/badlist"
)

func chdir(t *testing.T, dir string) {
	wd, err := os.Getwd()
	assert.NoError(t, err)
	assert.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func writeFile(t *testing.T, name, content string) {
	assert.NoError(t, os.WriteFile(name, []byte(content), 0600))
}

func TestParse(t *testing.T) {
	list, err := badlist.Parse([]byte(`{
		"_updated": "2025-11-24",
		"_comment": "second wave",
		"left-pad": ["1.3.0"],
		"chalk": ["5.6.1", "5.6.2"],
		"broken": {"not": "a list"}
	}`))
	assert.NoError(t, err)

	assert.Equal(t, 2, list.Packages())
	assert.True(t, list.Matches("left-pad", "1.3.0"))
	assert.True(t, list.Matches("chalk", "5.6.2"))
	assert.False(t, list.Matches("chalk", "5.6.0"))
	assert.False(t, list.Matches("left-pad", ""))
	assert.False(t, list.Matches("unknown", "1.0.0"))
}

func TestParseInvalid(t *testing.T) {
	_, err := badlist.Parse([]byte(`["not", "a", "map"]`))
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"left-pad": ["1.3.0"]}`))
	}))
	defer server.Close()

	list, err := badlist.Fetch(server.URL)
	assert.NoError(t, err)
	assert.True(t, list.Matches("left-pad", "1.3.0"))
}

func TestFetchBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := badlist.Fetch(server.URL)
	assert.Error(t, err)
}

func TestGetFallsBackToLocalFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`this is not JSON`))
	}))
	defer server.Close()

	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, badlist.LocalFilename, `{"chalk": ["5.6.1"]}`)

	list, err := badlist.Get(server.URL)
	assert.NoError(t, err)
	assert.True(t, list.Matches("chalk", "5.6.1"))
}

func TestGetNoSourceAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, statErr := os.Stat(os.Getenv("HOME") + "/.wormwatch/" + badlist.LocalFilename); statErr == nil {
		t.Skip("user-level fallback list present")
	}
	chdir(t, t.TempDir())

	_, err := badlist.Get(server.URL)
	assert.Error(t, err)
}
