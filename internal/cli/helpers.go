package cli

import (
	"strings"

	"github.com/imkarma/relay/internal/config"
	"github.com/imkarma/relay/internal/engine"
	"github.com/imkarma/relay/internal/state"
	"github.com/imkarma/relay/internal/store"
)

// ANSI color codes.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorDim     = "\033[2m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorWhite   = "\033[37m"
)

// mustEngine resolves configuration and opens the record store.
func mustEngine() (*engine.Engine, *store.Store, error) {
	cfg := config.Resolve()
	s, err := store.Open(cfg.DataDir(flagDir))
	if err != nil {
		return nil, nil, err
	}
	return engine.New(s), s, nil
}

// statusIcon returns a colored one-character marker for a stage status.
func statusIcon(st state.StageStatus) string {
	switch st {
	case state.StagePending:
		return colorDim + "○" + colorReset
	case state.StageInProgress:
		return colorBlue + "◐" + colorReset
	case state.StageDone:
		return colorGreen + "✓" + colorReset
	case state.StageFailed:
		return colorRed + "✗" + colorReset
	case state.StageSkipped:
		return colorYellow + "»" + colorReset
	}
	return "?"
}

func projectStatusColor(st state.ProjectStatus) string {
	switch st {
	case state.ProjectActive:
		return colorBlue
	case state.ProjectCompleted:
		return colorGreen
	case state.ProjectBlocked:
		return colorRed
	}
	return ""
}

// progressBar renders the done/total bar shown under stage listings.
func progressBar(done, total int) string {
	return strings.Repeat("█", done) + strings.Repeat("░", total-done)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
