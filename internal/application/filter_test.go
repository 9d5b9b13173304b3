package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nitpickbot/nitpick/internal/application"
	"github.com/nitpickbot/nitpick/internal/domain/model"
)

func openPR(author, description string) model.PullRequestRef {
	return model.PullRequestRef{
		RepoFullName: "octo/widgets",
		Number:       1,
		Author:       author,
		Description:  description,
		IsOpen:       true,
	}
}

func TestFilter_ClosedPR(t *testing.T) {
	f := application.NewFilter(nil, nil, "nitpick: ignore")
	pr := openPR("alice", "")
	pr.IsOpen = false

	ok, reason := f.IsEligible(pr, false)

	assert.False(t, ok)
	assert.Equal(t, "pull request is not open", reason)
}

func TestFilter_BlacklistWinsRegardlessOfOtherFields(t *testing.T) {
	f := application.NewFilter(nil, []string{"Dependabot"}, "nitpick: ignore")

	ok, _ := f.IsEligible(openPR("dependabot", "perfectly normal description"), false)

	assert.False(t, ok, "blacklisted author is never eligible")
}

func TestFilter_WhitelistExcludesOthers(t *testing.T) {
	f := application.NewFilter([]string{"alice"}, nil, "nitpick: ignore")

	ok, _ := f.IsEligible(openPR("alice", ""), false)
	assert.True(t, ok)

	ok, reason := f.IsEligible(openPR("bob", ""), false)
	assert.False(t, ok)
	assert.Equal(t, "author is not whitelisted", reason)
}

func TestFilter_IgnoreMarkerAnyCase(t *testing.T) {
	f := application.NewFilter([]string{"alice"}, nil, "nitpick: ignore")

	// Marker beats the whitelist even for a whitelisted author.
	ok, reason := f.IsEligible(openPR("alice", "WIP\n\nNITPICK: IGNORE please"), false)

	assert.False(t, ok)
	assert.Equal(t, "description contains ignore marker", reason)
}

func TestFilter_EligibleByDefault(t *testing.T) {
	f := application.NewFilter(nil, nil, "nitpick: ignore")

	ok, reason := f.IsEligible(openPR("anyone", "a regular PR"), false)

	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestFilter_ForceBypassesStateOnly(t *testing.T) {
	f := application.NewFilter(nil, []string{"bot"}, "nitpick: ignore")

	closed := openPR("alice", "")
	closed.IsOpen = false
	ok, _ := f.IsEligible(closed, true)
	assert.True(t, ok, "force skips the open-state rule")

	closedBot := openPR("bot", "")
	closedBot.IsOpen = false
	ok, _ = f.IsEligible(closedBot, true)
	assert.False(t, ok, "force does not skip the author rules")

	marked := openPR("alice", "nitpick: ignore")
	ok, _ = f.IsEligible(marked, true)
	assert.False(t, ok, "force does not skip the ignore marker")
}
