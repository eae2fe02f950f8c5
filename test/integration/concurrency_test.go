package integration

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConcurrentVotesSameIdentity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	creator := createUserAndToken(t, app.DB)
	poll := createPoll(t, app, creator, map[string]interface{}{
		"title":   "Concurrent same identity",
		"options": []string{"A", "B"},
	})

	const attempts = 10
	statuses := make([]int, attempts)
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := castVote(t, app, poll.ID, poll.Options[i%2].ID, "", "192.0.2.50")
			statuses[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	created, conflicted := 0, 0
	for _, status := range statuses {
		switch status {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicted++
		default:
			t.Fatalf("unexpected status: %d", status)
		}
	}

	require.Equal(t, 1, created, "exactly one concurrent vote may succeed")
	require.Equal(t, attempts-1, conflicted)
}

func TestConcurrentVotesDistinctIdentities(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	creator := createUserAndToken(t, app.DB)
	poll := createPoll(t, app, creator, map[string]interface{}{
		"title":   "Concurrent distinct identities",
		"options": []string{"A", "B"},
	})

	const voters = 10
	var wg sync.WaitGroup

	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := castVote(t, app, poll.ID, poll.Options[i%2].ID, "", fmt.Sprintf("192.0.2.%d", i+1))
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	fetched := fetchPoll(t, app, poll.ID)
	require.Equal(t, int64(voters), fetched.TotalVotes)
}
