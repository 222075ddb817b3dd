package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/fretdrill/internal/adaptive"
	"github.com/verte-zerg/fretdrill/internal/calibration"
	"github.com/verte-zerg/fretdrill/internal/config"
	"github.com/verte-zerg/fretdrill/internal/model"
	"github.com/verte-zerg/fretdrill/internal/music"
	"github.com/verte-zerg/fretdrill/internal/store"
)

// env is everything a command needs to query or drive one mode's engine.
type env struct {
	logger     zerolog.Logger
	closeLog   func()
	store      *store.Store
	items      *store.ItemStore
	selector   *adaptive.Selector
	calibrated bool
}

func (e *env) Close() {
	closeStore(e.store)
	e.closeLog()
}

func openEnv(ctx context.Context, fileCfg config.FileConfig, mode music.Mode) (*env, error) {
	logger, closeLog := openLogger(debugLog)
	st, err := openStore(logger)
	if err != nil {
		closeLog()
		return nil, err
	}
	e := &env{logger: logger, closeLog: closeLog, store: st}

	e.items, err = st.Namespace(ctx, mode.Name())
	if err != nil {
		e.Close()
		return nil, err
	}
	e.selector, err = adaptive.NewSelector(e.items, adaptive.DefaultConfig(),
		rand.New(rand.NewSource(time.Now().UnixNano())),
		adaptive.WithLogger(logger.With().Str("namespace", mode.Name()).Logger()))
	if err != nil {
		e.Close()
		return nil, err
	}

	baseline, ok, err := st.Baseline(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load baseline")
	}
	if ok {
		if err := e.selector.UpdateConfig(calibration.Patch(baseline)); err != nil {
			logger.Warn().Err(err).Dur("baseline", baseline).Msg("ignoring unusable baseline")
		} else {
			e.calibrated = true
		}
	}
	if err := e.selector.UpdateConfig(fileCfg.Engine); err != nil {
		e.Close()
		return nil, fmt.Errorf("invalid [engine] config: %w", err)
	}
	logger.Debug().Str("mode", mode.Name()).Int("stored", len(e.items.ItemIDs())).Interface("config", e.selector.Config()).Msg("engine ready")
	return e, nil
}

func openStore(logger zerolog.Logger) (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath(), store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

// openLogger writes diagnostics to the log file; the terminal belongs to the TUI.
// A log file that cannot be opened disables logging rather than failing the command.
func openLogger(debug bool) (zerolog.Logger, func()) {
	path := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logErrf("failed to create log directory: %v\n", err)
		return zerolog.Nop(), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logErrf("failed to open log file: %v\n", err)
		return zerolog.Nop(), func() {}
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, func() {
		if cerr := f.Close(); cerr != nil {
			_ = cerr
		}
	}
}

type groupRequest struct {
	Explicit []int
	Saved    []int
	HasSaved bool
	Suggest  bool
	Now      time.Time
}

type groupChoice struct {
	Groups  []int
	Items   []string
	Notices []string
}

// chooseGroups resolves which groups to drill. Precedence: explicit groups,
// then recommendations when suggest is set, then the saved selection, then
// recommendations. First launch always enables the recommended starting group.
func chooseGroups(reader adaptive.StatsReader, groups []model.GroupDef, sortUnstarted func(a, b model.GroupDef) int, cfg adaptive.Config, req groupRequest) (groupChoice, error) {
	if len(groups) == 0 {
		return groupChoice{}, fmt.Errorf("mode has no groups")
	}
	rec := adaptive.ComputeRecommendations(reader, groups, cfg, adaptive.RecommendOptions{
		Now:           req.Now,
		SortUnstarted: sortUnstarted,
	})
	labels := make(map[int]string, len(groups))
	for _, g := range groups {
		labels[g.Index] = g.Label
	}

	var choice groupChoice
	suggested := rec.RecommendedGroups()
	if rec.Enabled != nil {
		suggested = sortedSet(rec.Enabled)
	}
	switch {
	case len(req.Explicit) > 0:
		choice.Groups = req.Explicit
	case req.Suggest:
		choice.Groups = suggested
	case req.HasSaved && len(req.Saved) > 0:
		choice.Groups = req.Saved
	default:
		choice.Groups = suggested
	}
	choice.Groups = dedupeSorted(choice.Groups)
	for _, idx := range choice.Groups {
		if _, ok := labels[idx]; !ok {
			return groupChoice{}, fmt.Errorf("unknown group %d (valid: 0-%d)", idx, len(groups)-1)
		}
	}

	selected := make(map[int]struct{}, len(choice.Groups))
	for _, idx := range choice.Groups {
		selected[idx] = struct{}{}
	}
	for _, g := range groups {
		if _, ok := selected[g.Index]; ok {
			choice.Items = append(choice.Items, g.ItemIDs...)
		}
	}

	if rec.Enabled != nil {
		if len(req.Explicit) == 0 {
			choice.Notices = append(choice.Notices, "First session: starting with "+labels[sortedSet(rec.Enabled)[0]])
		}
	} else {
		names := make([]string, 0, len(suggested))
		for _, idx := range suggested {
			names = append(names, labels[idx])
		}
		choice.Notices = append(choice.Notices, "Recommended: "+strings.Join(names, ", "))
	}
	if rec.Expanded >= 0 {
		if _, ok := selected[rec.Expanded]; !ok {
			choice.Notices = append(choice.Notices, fmt.Sprintf("Ready for new material: %s (use --suggest)", labels[rec.Expanded]))
		}
	}
	return choice, nil
}

func sortedSet(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for idx := range set {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func dedupeSorted(values []int) []int {
	seen := make(map[int]struct{}, len(values))
	out := make([]int, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
