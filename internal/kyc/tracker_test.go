package kyc

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_RegistersFullCheckSet(t *testing.T) {
	t.Run("with selfie", func(t *testing.T) {
		tracker := NewTracker(true)
		checks := tracker.Checks()
		require.Len(t, checks, 7)
		assert.Equal(t, CheckDocumentOCR, checks[0])
		assert.Equal(t, CheckInternationalSanctions, checks[6])
		assert.Contains(t, checks, CheckLiveness)
		for _, check := range checks {
			assert.Equal(t, StatusPending, tracker.Status(check))
		}
	})

	t.Run("without selfie", func(t *testing.T) {
		tracker := NewTracker(false)
		checks := tracker.Checks()
		require.Len(t, checks, 6)
		assert.NotContains(t, checks, CheckLiveness)
		assert.Contains(t, checks, CheckFaceMatch)
	})
}

func TestTracker_SetStatusIgnoresUnknownChecks(t *testing.T) {
	tracker := NewTracker(false)
	tracker.SetStatus(CheckLiveness, StatusSuccess, "")
	tracker.SetStatus(Check("made_up"), StatusError, "boom")

	assert.Len(t, tracker.Checks(), 6, "the check set never grows after construction")
	assert.Equal(t, StatusPending, tracker.Status(CheckLiveness))
}

func TestTracker_SetStatusReplacesTheMessage(t *testing.T) {
	tracker := NewTracker(false)

	tracker.SetStatus(CheckCivilRegistryIDMatch, StatusError, "the verification service did not respond; try again")
	require.Equal(t, "the verification service did not respond; try again", tracker.Message(CheckCivilRegistryIDMatch))

	tracker.SetStatus(CheckCivilRegistryIDMatch, StatusInProgress, "")
	assert.Empty(t, tracker.Message(CheckCivilRegistryIDMatch), "re-running a check clears its last message")

	tracker.SetStatus(CheckCivilRegistryIDMatch, StatusError, "identity data does not match the registry")
	tracker.SetStatus(CheckCivilRegistryIDMatch, StatusSuccess, "")
	assert.Equal(t, StatusSuccess, tracker.Status(CheckCivilRegistryIDMatch))
	assert.Empty(t, tracker.Message(CheckCivilRegistryIDMatch), "a succeeded check keeps no stale failure text")

	for _, step := range tracker.Steps() {
		if step.Check == CheckCivilRegistryIDMatch {
			assert.Empty(t, step.Message)
		}
	}
}

func TestTracker_CompletionAndPassing(t *testing.T) {
	tracker := NewTracker(false)
	assert.False(t, tracker.IsComplete())
	assert.False(t, tracker.AllPassed())

	for _, check := range tracker.Checks() {
		tracker.SetStatus(check, StatusSuccess, "")
	}
	assert.True(t, tracker.IsComplete())
	assert.True(t, tracker.AllPassed())

	tracker.SetStatus(CheckDomesticSanctions, StatusWarning, "possible match")
	assert.True(t, tracker.IsComplete())
	assert.True(t, tracker.AllPassed(), "warnings count as passed")

	tracker.SetStatus(CheckFaceMatch, StatusError, "no match")
	assert.True(t, tracker.IsComplete())
	assert.False(t, tracker.AllPassed())

	tracker.SetStatus(CheckFaceMatch, StatusInProgress, "")
	assert.False(t, tracker.IsComplete(), "in_progress re-entry reopens the session")
}

func TestTracker_FirstErrorFollowsInsertionOrder(t *testing.T) {
	tracker := NewTracker(true)
	_, _, failed := tracker.FirstError()
	assert.False(t, failed)

	tracker.SetStatus(CheckFaceMatch, StatusError, "face does not match")
	tracker.SetStatus(CheckDocumentOCR, StatusError, "unreadable document")

	check, message, failed := tracker.FirstError()
	require.True(t, failed)
	assert.Equal(t, CheckDocumentOCR, check)
	assert.Equal(t, "unreadable document", message)
}

func TestTracker_JSONRoundTripPreservesOrderAndMessages(t *testing.T) {
	tracker := NewTracker(true)
	tracker.SetStatus(CheckDocumentOCR, StatusSuccess, "")
	tracker.SetStatus(CheckDocumentListLookup, StatusWarning, "not on nominal list")
	tracker.SetStatus(CheckCivilRegistryIDMatch, StatusError, "mismatch")

	data, err := json.Marshal(tracker)
	require.NoError(t, err)

	var restored Tracker
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, tracker.Checks(), restored.Checks())
	assert.Equal(t, StatusSuccess, restored.Status(CheckDocumentOCR))
	assert.Equal(t, StatusWarning, restored.Status(CheckDocumentListLookup))
	assert.Equal(t, "not on nominal list", restored.Message(CheckDocumentListLookup))
	assert.Equal(t, StatusPending, restored.Status(CheckFaceMatch))

	check, message, failed := restored.FirstError()
	require.True(t, failed)
	assert.Equal(t, CheckCivilRegistryIDMatch, check)
	assert.Equal(t, "mismatch", message)
}

func TestTracker_ConcurrentWrites(t *testing.T) {
	tracker := NewTracker(true)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tracker.SetStatus(CheckDomesticSanctions, StatusSuccess, "")
		}()
		go func() {
			defer wg.Done()
			tracker.SetStatus(CheckInternationalSanctions, StatusWarning, "possible match")
		}()
	}
	wg.Wait()

	assert.Equal(t, StatusSuccess, tracker.Status(CheckDomesticSanctions))
	assert.Equal(t, StatusWarning, tracker.Status(CheckInternationalSanctions))
}
