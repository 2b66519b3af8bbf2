package diag

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverities(t *testing.T) {
	cases := []struct {
		d    Positioned
		want Severity
	}{
		{NewCircularReference("a.yml", "a.yml", []string{"a.yml"}), Error},
		{NewInvalidTocHref("a.yml", "x"), Warning},
		{NewInvalidTopicHref("a.yml", "x"), Warning},
		{NewFileNotFound("a.yml", "sub/"), Warning},
		{NewMissingAttribute("a.yml", "name"), Warning},
		{NewCollaboratorError("a.yml", errors.New("boom")), Warning},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.d.Severity())
	}
}

func TestCollaboratorErrorUnwraps(t *testing.T) {
	boom := errors.New("boom")
	d := NewCollaboratorError("a.yml", boom)
	require.ErrorIs(t, error(d), boom)
}

func TestSinkReportAndCounts(t *testing.T) {
	sink := NewSink()
	sink.Report(NewMissingAttribute("a.yml", "name"))
	sink.Report(NewCircularReference("b.yml", "b.yml", []string{"b.yml"}))
	sink.Report(NewFileNotFound("c.yml", "sub/"))

	warnings, errs := sink.CountBySeverity()
	assert.Equal(t, 2, warnings)
	assert.Equal(t, 1, errs)
	assert.True(t, sink.HasErrors())
	assert.Len(t, sink.Items(), 3)
}

func TestSinkConcurrentReport(t *testing.T) {
	sink := NewSink()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sink.Report(NewMissingAttribute("a.yml", "name"))
		}(i)
	}
	wg.Wait()
	assert.Len(t, sink.Items(), 50)
}

func TestSinkNoErrors(t *testing.T) {
	sink := NewSink()
	sink.Report(NewMissingAttribute("a.yml", "name"))
	assert.False(t, sink.HasErrors())
}
