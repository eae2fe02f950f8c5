package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livepoll/api/internal/core/domain"
)

func fetchPoll(t *testing.T, app *TestApp, pollID uuid.UUID) domain.Poll {
	t.Helper()

	resp, err := app.Client.Get(fmt.Sprintf("%s/api/polls/%s", app.Server.URL, pollID))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var poll domain.Poll
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&poll))
	return poll
}

func authedRequest(t *testing.T, method, url, token string, payload interface{}) *http.Request {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	return req
}

func TestCreateAndGetPoll(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	token := createUserAndToken(t, app.DB)
	poll := createPoll(t, app, token, map[string]interface{}{
		"title":       "Team offsite",
		"description": "Where should we go?",
		"options":     []string{"Mountains", "Beach", "City"},
	})

	require.Len(t, poll.Options, 3)
	assert.True(t, poll.IsActive)
	assert.Equal(t, "Mountains", poll.Options[0].Text)
	assert.Equal(t, "Beach", poll.Options[1].Text)
	assert.Equal(t, "City", poll.Options[2].Text)

	fetched := fetchPoll(t, app, poll.ID)
	assert.Equal(t, poll.ID, fetched.ID)
	assert.Equal(t, "Team offsite", fetched.Title)
	assert.Equal(t, int64(0), fetched.TotalVotes)
}

func TestCreatePollValidation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	token := createUserAndToken(t, app.DB)

	cases := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"missing title", map[string]interface{}{"options": []string{"A", "B"}}},
		{"single option", map[string]interface{}{"title": "T", "options": []string{"A"}}},
		{"duplicate options", map[string]interface{}{"title": "T", "options": []string{"A", "A"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := authedRequest(t, "POST", app.Server.URL+"/api/polls", token, tc.payload)
			resp, err := app.Client.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestUpdatePollPreservesSurvivingOptionIDs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	token := createUserAndToken(t, app.DB)
	poll := createPoll(t, app, token, map[string]interface{}{
		"title":   "Editable poll",
		"options": []string{"Keep", "Drop"},
	})
	keepID := poll.Options[0].ID

	req := authedRequest(t, "PUT", fmt.Sprintf("%s/api/polls/%s", app.Server.URL, poll.ID), token, map[string]interface{}{
		"title":   "Edited poll",
		"options": []string{"Keep", "Fresh"},
	})
	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated domain.Poll
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))

	assert.Equal(t, "Edited poll", updated.Title)
	require.Len(t, updated.Options, 2)
	assert.Equal(t, "Keep", updated.Options[0].Text)
	assert.Equal(t, keepID, updated.Options[0].ID, "option surviving by text keeps its id")
	assert.Equal(t, "Fresh", updated.Options[1].Text)
	assert.NotEqual(t, poll.Options[1].ID, updated.Options[1].ID)
}

func TestUpdatePollOwnership(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	owner := createUserAndToken(t, app.DB)
	poll := createPoll(t, app, owner, map[string]interface{}{
		"title":   "Owned poll",
		"options": []string{"A", "B"},
	})

	stranger := createUserAndToken(t, app.DB)
	req := authedRequest(t, "PUT", fmt.Sprintf("%s/api/polls/%s", app.Server.URL, poll.ID), stranger, map[string]interface{}{
		"title": "Hijacked",
	})
	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestTogglePoll(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	token := createUserAndToken(t, app.DB)
	poll := createPoll(t, app, token, map[string]interface{}{
		"title":   "Toggle poll",
		"options": []string{"A", "B"},
	})
	require.True(t, poll.IsActive)

	req := authedRequest(t, "POST", fmt.Sprintf("%s/api/polls/%s/toggle", app.Server.URL, poll.ID), token, nil)
	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var toggled domain.Poll
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&toggled))
	assert.False(t, toggled.IsActive)

	// Inactive polls reject votes.
	voteResp := castVote(t, app, poll.ID, poll.Options[0].ID, token, "")
	voteResp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, voteResp.StatusCode)
}

func TestDeletePoll(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	token := createUserAndToken(t, app.DB)
	poll := createPoll(t, app, token, map[string]interface{}{
		"title":   "Doomed poll",
		"options": []string{"A", "B"},
	})

	req := authedRequest(t, "DELETE", fmt.Sprintf("%s/api/polls/%s", app.Server.URL, poll.ID), token, nil)
	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	getResp, err := app.Client.Get(fmt.Sprintf("%s/api/polls/%s", app.Server.URL, poll.ID))
	require.NoError(t, err)
	getResp.Body.Close()
	require.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestListPollsExcludesInactive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	token := createUserAndToken(t, app.DB)
	active := createPoll(t, app, token, map[string]interface{}{
		"title":   "Active poll",
		"options": []string{"A", "B"},
	})
	inactive := createPoll(t, app, token, map[string]interface{}{
		"title":     "Inactive poll",
		"is_active": false,
		"options":   []string{"A", "B"},
	})

	resp, err := app.Client.Get(app.Server.URL + "/api/polls")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var polls []domain.Poll
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&polls))

	ids := make(map[uuid.UUID]bool, len(polls))
	for _, p := range polls {
		ids[p.ID] = true
	}
	assert.True(t, ids[active.ID])
	assert.False(t, ids[inactive.ID])
}
