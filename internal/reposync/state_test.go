package reposync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsHealthyRequiresCommitAndNoError(t *testing.T) {
	s := New()
	assert.False(t, s.IsHealthy())

	s.RecordSuccess("abc123", time.Now())
	assert.True(t, s.IsHealthy())

	s.RecordFailure("fetch timed out")
	assert.False(t, s.IsHealthy())
	assert.Equal(t, uint32(1), s.FailureCount())
}

func TestRecordSuccessResetsFailureCount(t *testing.T) {
	s := New()
	s.RecordFailure("e1")
	s.RecordFailure("e2")
	assert.Equal(t, uint32(2), s.FailureCount())

	s.RecordSuccess("sha", time.Now())
	assert.Equal(t, uint32(0), s.FailureCount())
	_, hasErr := s.LastError()
	assert.False(t, hasErr)
}

func TestRecordFailureDoesNotClearCommit(t *testing.T) {
	s := New()
	s.RecordSuccess("sha1", time.Now())
	s.RecordFailure("network down")

	commit, ok := s.Commit()
	assert.True(t, ok)
	assert.Equal(t, "sha1", commit)
}
