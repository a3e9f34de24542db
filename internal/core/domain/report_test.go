package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/spool/internal/core/domain"
)

func TestBuildReport_Counts(t *testing.T) {
	var r domain.BuildReport
	r.Add(domain.EntryReport{EntryPath: "b.html.js", Status: domain.StatusFailed, ErrorKind: domain.KindThrown})
	r.Add(domain.EntryReport{EntryPath: "a.html.js", Status: domain.StatusSuccess, Cached: true})
	r.Add(domain.EntryReport{EntryPath: "c.css.js", Status: domain.StatusSuccess})

	r.Sort()

	assert.Equal(t, "a.html.js", r.Entries[0].EntryPath)
	assert.Equal(t, 2, r.Succeeded())
	assert.Equal(t, 1, r.Failed())
	assert.Equal(t, 1, r.Cached())
	assert.False(t, r.OK())
}

func TestLockfile_Pin(t *testing.T) {
	l := domain.NewLockfile()

	assert.True(t, l.Pin("https://cdn.example.com/a.js", "sha384-A"))
	assert.False(t, l.Pin("https://cdn.example.com/a.js", "sha384-A"))
	assert.True(t, l.Pin("https://cdn.example.com/a.js", "sha384-B"))

	got, ok := l.Integrity("https://cdn.example.com/a.js")
	assert.True(t, ok)
	assert.Equal(t, "sha384-B", got)

	_, ok = l.Integrity("https://cdn.example.com/missing.js")
	assert.False(t, ok)
}

func TestVersionedPath(t *testing.T) {
	assert.Equal(t, "v1.2.0/a/index.html", domain.VersionedPath("a/index.html", "v1.2.0", "abcdef0123456789"))
	assert.Equal(t, "abcdef0123456789/style.css", domain.VersionedPath("style.css", "", "abcdef0123456789"))
}
