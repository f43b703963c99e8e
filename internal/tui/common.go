package tui

import (
	"time"

	"github.com/Niansi/baby-tracker/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewHome viewState = iota
	viewRecords
	viewAnalysis
	viewBooks
	viewActivities
	viewSettings
)

var viewNames = []string{"首页", "记录", "分析", "本子", "活动", "设置"}

// --- Messages ---

type timerStartedMsg struct {
	activity store.Activity
}

type timerStoppedMsg struct {
	record *store.Record
}

type recordAddedMsg struct {
	record *store.Record
}

type recordChangedMsg struct{}

type booksChangedMsg struct{}

type configChangedMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// timeNow is swapped out by tests that need a fixed clock.
var timeNow = time.Now

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
