package repositories

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/ai-interviewer/internal/models"
)

var sessionIDPattern = regexp.MustCompile(`^session_\d+_[0-9a-f]{8}$`)

func TestCreateYieldsDistinctIDs(t *testing.T) {
	repo := NewSessionRepository(time.Hour, time.Minute)

	first, err := repo.Create()
	require.NoError(t, err)
	second, err := repo.Create()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Regexp(t, sessionIDPattern, first)
	assert.Regexp(t, sessionIDPattern, second)
	assert.Equal(t, 2, repo.Count())
}

func TestCreateInitializesEmptySession(t *testing.T) {
	repo := NewSessionRepository(time.Hour, time.Minute)

	id, err := repo.Create()
	require.NoError(t, err)

	s, ok := repo.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, s.ID)
	assert.Nil(t, s.CandidateInfo)
	assert.NotNil(t, s.Answers)
	assert.Empty(t, s.Answers)
}

func TestUnknownSessionMutationsAreNoOps(t *testing.T) {
	repo := NewSessionRepository(time.Hour, time.Minute)

	assert.NotPanics(t, func() {
		repo.AppendAnswer("session_1_abcd1234", models.FallbackEvaluation(1, "Explain OOP"))
		repo.RecordProfile("session_1_abcd1234", models.FallbackProfile("session_1_abcd1234"))
	})

	_, ok := repo.Get("session_1_abcd1234")
	assert.False(t, ok)
	assert.Equal(t, 0, repo.Count())
}

func TestRecordProfileAndAppendAnswer(t *testing.T) {
	repo := NewSessionRepository(time.Hour, time.Minute)
	id, err := repo.Create()
	require.NoError(t, err)

	repo.RecordProfile(id, &models.CandidateProfile{Name: "Alice", SessionID: id})
	repo.AppendAnswer(id, &models.AnswerEvaluation{QuestionID: 1, TechnicalScore: 9})
	repo.AppendAnswer(id, &models.AnswerEvaluation{QuestionID: 2, TechnicalScore: 6})

	s, ok := repo.Get(id)
	require.True(t, ok)
	require.NotNil(t, s.CandidateInfo)
	assert.Equal(t, "Alice", s.CandidateInfo.Name)
	require.Len(t, s.Answers, 2)
	assert.Equal(t, 1, s.Answers[0].QuestionID)
	assert.Equal(t, 2, s.Answers[1].QuestionID)
}

func TestGetReturnsSnapshot(t *testing.T) {
	repo := NewSessionRepository(time.Hour, time.Minute)
	id, err := repo.Create()
	require.NoError(t, err)

	s, _ := repo.Get(id)
	s.Answers = append(s.Answers, models.AnswerEvaluation{QuestionID: 5})

	fresh, _ := repo.Get(id)
	assert.Empty(t, fresh.Answers)
}

func TestConcurrentAppendsAreNotLost(t *testing.T) {
	repo := NewSessionRepository(time.Hour, time.Minute)
	id, err := repo.Create()
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(qid int) {
			defer wg.Done()
			repo.AppendAnswer(id, &models.AnswerEvaluation{QuestionID: qid})
		}(i + 1)
	}
	wg.Wait()

	s, ok := repo.Get(id)
	require.True(t, ok)
	assert.Len(t, s.Answers, n)
}

func TestSessionsExpire(t *testing.T) {
	repo := NewSessionRepository(20*time.Millisecond, time.Hour)
	id, err := repo.Create()
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, ok := repo.Get(id)
	assert.False(t, ok)

	repo.AppendAnswer(id, models.FallbackEvaluation(1, "q"))
	_, ok = repo.Get(id)
	assert.False(t, ok, "appending to an expired session must not resurrect it")
}
