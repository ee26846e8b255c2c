package loadtest

import (
	"context"
	"testing"
	"time"

	"github.com/EmpoweredVote/EV-Notepad/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOptionsValidate(t *testing.T) {
	valid := Options{Host: "http://localhost:5050", Users: 1, Duration: time.Second, Email: "a@b.c", Password: "pw"}
	require.NoError(t, valid.validate())

	bad := valid
	bad.Users = 0
	assert.Error(t, bad.validate())

	bad = valid
	bad.WaitMin, bad.WaitMax = time.Second, time.Millisecond
	assert.Error(t, bad.validate())

	bad = valid
	bad.Email = ""
	assert.Error(t, bad.validate())
}

func TestPickRespectsWeights(t *testing.T) {
	counts := map[string]int{}
	for range 6000 {
		counts[pick(notepadTasks).name]++
	}
	assert.Greater(t, counts["list"], counts["create"])
	assert.Greater(t, counts["create"], counts["view"])
	assert.Positive(t, counts["view"])
}

func TestCSRFToken(t *testing.T) {
	assert.Equal(t, "a+b=", csrfToken(`<meta name="csrf-token" content="a+b&#61;">`))
	assert.Empty(t, csrfToken("<html></html>"))
}

func TestRunAgainstServer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping load run in short mode")
	}

	app := testutil.NewServer(t)
	testutil.CreateUser(t, app.DB, "user@example.com", "test1234")

	r, err := NewRunner(Options{
		Host:     app.Server.URL,
		Users:    2,
		Duration: 750 * time.Millisecond,
		WaitMin:  5 * time.Millisecond,
		WaitMax:  20 * time.Millisecond,
		Email:    "user@example.com",
		Password: "test1234",
	}, zap.NewNop())
	require.NoError(t, err)

	s, err := r.Run(context.Background())
	require.NoError(t, err)

	requests, failures := s.Totals()
	assert.Positive(t, requests)
	assert.Zero(t, failures, "%+v", s.Tasks)

	tasks := map[string]bool{}
	for _, ts := range s.Tasks {
		tasks[ts.Task] = true
	}
	assert.True(t, tasks["signup"])
	assert.True(t, tasks["login"])
}
