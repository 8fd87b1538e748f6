package grade

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gradecast/gradecast/internal/config"
	"github.com/gradecast/gradecast/internal/database"
	"github.com/gradecast/gradecast/internal/library"
	"github.com/gradecast/gradecast/internal/pool"
	"github.com/gradecast/gradecast/internal/songtext"
)

// MissingReporter receives songs the cascade wanted but the library lacks.
type MissingReporter interface {
	Report(ctx context.Context, title, artist, stationID string) error
}

// Generator produces schedule block lines via the selection cascade.
type Generator struct {
	cfg     config.GenerationConfig
	store   *database.Store
	pool    *pool.Service
	tracker *Tracker
	checker library.Checker
	missing MissingReporter

	checkTimeout time.Duration
	rankingSize  int
	logger       zerolog.Logger
}

// NewGenerator creates a generator.
func NewGenerator(cfg config.GenerationConfig, store *database.Store, poolSvc *pool.Service,
	tracker *Tracker, checker library.Checker, missing MissingReporter,
	checkTimeout time.Duration, logger zerolog.Logger) *Generator {
	if checkTimeout <= 0 {
		checkTimeout = 10 * time.Second
	}
	return &Generator{
		cfg:          cfg,
		store:        store,
		pool:         poolSvc,
		tracker:      tracker,
		checker:      checker,
		missing:      missing,
		checkTimeout: checkTimeout,
		rankingSize:  50,
		logger:       logger.With().Str("component", "generator").Logger(),
	}
}

// buildEnv caches per-build inputs so a full-day run hits the store once.
type buildEnv struct {
	sequences []*database.Sequence
	fixed     []*database.FixedContent
	stations  map[string]*database.Station
	ranking   []*database.RankingSong

	stationPools map[string][]*database.PoolEntry
	fullPool     []*database.PoolEntry
	stylePools   map[string][]*database.PoolEntry
	regionalPool []*database.PoolEntry
}

// blockState tracks songs already committed within the current block.
type blockState struct {
	songs   map[string]bool
	artists map[string]bool
}

func newBlockState() *blockState {
	return &blockState{songs: make(map[string]bool), artists: make(map[string]bool)}
}

func (b *blockState) has(title, artist string) bool {
	return b.songs[songtext.Key(artist, title)]
}

func (b *blockState) hasArtist(artist string) bool {
	return b.artists[songtext.Normalize(artist)]
}

func (b *blockState) add(title, artist string) {
	b.songs[songtext.Key(artist, title)] = true
	b.artists[songtext.Normalize(artist)] = true
}

func (g *Generator) loadEnv(ctx context.Context) (*buildEnv, error) {
	sequences, err := g.store.ListSequences(ctx)
	if err != nil {
		return nil, err
	}
	fixed, err := g.store.ListFixedContents(ctx)
	if err != nil {
		return nil, err
	}
	stationList, err := g.store.ListStations(ctx)
	if err != nil {
		return nil, err
	}
	ranking, err := g.store.TopRanking(ctx, g.rankingSize)
	if err != nil {
		return nil, err
	}

	stations := make(map[string]*database.Station, len(stationList))
	for _, st := range stationList {
		stations[st.ID] = st
	}

	return &buildEnv{
		sequences:    sequences,
		fixed:        fixed,
		stations:     stations,
		ranking:      ranking,
		stationPools: make(map[string][]*database.PoolEntry),
		stylePools:   make(map[string][]*database.PoolEntry),
	}, nil
}

func (g *Generator) stationPool(ctx context.Context, env *buildEnv, stationID string) []*database.PoolEntry {
	if entries, ok := env.stationPools[stationID]; ok {
		return entries
	}
	entries, err := g.pool.ByStation(ctx, stationID)
	if err != nil {
		g.logger.Warn().Err(err).Str("station", stationID).Msg("Failed to load station pool")
		entries = nil
	}
	env.stationPools[stationID] = entries
	return entries
}

func (g *Generator) combinedPool(ctx context.Context, env *buildEnv) []*database.PoolEntry {
	if env.fullPool == nil {
		entries, err := g.pool.All(ctx)
		if err != nil {
			g.logger.Warn().Err(err).Msg("Failed to load combined pool")
			entries = []*database.PoolEntry{}
		}
		env.fullPool = entries
	}
	return env.fullPool
}

func (g *Generator) stylePool(ctx context.Context, env *buildEnv, style string) []*database.PoolEntry {
	if entries, ok := env.stylePools[style]; ok {
		return entries
	}
	entries, err := g.pool.ByStyle(ctx, style)
	if err != nil {
		g.logger.Warn().Err(err).Str("style", style).Msg("Failed to load style pool")
		entries = nil
	}
	env.stylePools[style] = entries
	return entries
}

// BuildBlock generates the schedule line for one block.
func (g *Generator) BuildBlock(ctx context.Context, day time.Time, bt BlockTime, fullDay bool) (*BlockResult, error) {
	env, err := g.loadEnv(ctx)
	if err != nil {
		return nil, err
	}
	return g.buildBlock(ctx, env, day, bt, fullDay), nil
}

// BuildFullDay generates all 48 blocks for the given day.
func (g *Generator) BuildFullDay(ctx context.Context, day time.Time) (*DayResult, error) {
	env, err := g.loadEnv(ctx)
	if err != nil {
		return nil, err
	}

	result := &DayResult{Weekday: day.Weekday()}
	for _, bt := range AllBlockTimes() {
		// A cancelled build keeps the blocks finished so far.
		if err := ctx.Err(); err != nil {
			return result, err
		}
		block := g.buildBlock(ctx, env, day, bt, true)
		result.Blocks = append(result.Blocks, block)
		result.Processed += block.Processed
		result.Found += block.Found
		result.Missing += block.Missing
	}
	return result, nil
}

func (g *Generator) buildBlock(ctx context.Context, env *buildEnv, day time.Time, bt BlockTime, fullDay bool) *BlockResult {
	// Special-case intercepts, fixed priority order.
	if res := g.nationalBlock(day, bt); res != nil {
		return res
	}
	if res := g.countdownBlock(env, bt); res != nil {
		return res
	}
	if res := g.topRankedBlock(env, bt, fullDay); res != nil {
		return res
	}
	if res := g.overnightBlock(ctx, env, bt, fullDay); res != nil {
		return res
	}

	return g.normalBlock(ctx, env, day, bt, fullDay)
}

// nationalBlock handles the mandatory national broadcast slot, weekdays only.
func (g *Generator) nationalBlock(day time.Time, bt BlockTime) *BlockResult {
	nc := g.cfg.National
	if !nc.Enabled {
		return nil
	}
	if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		return nil
	}
	if bt.Hour != nc.Hour || bt.Minute != nc.Minute {
		return nil
	}

	return &BlockResult{
		Time:    bt,
		Program: nc.Program,
		Line:    BuildLine(bt, nc.Program, []string{nc.Token}),
		Decisions: []Decision{
			{Position: 0, Source: "national", Outcome: OutcomeFixed},
		},
	}
}

// countdownBlock maps ranking positions onto fixed slots deterministically:
// the run counts down so the last song of the last slot is the #1 song.
func (g *Generator) countdownBlock(env *buildEnv, bt BlockTime) *BlockResult {
	cc := g.cfg.Countdown
	slot := slotIndex(cc.Slots, bt)
	if !cc.Enabled || slot < 0 {
		return nil
	}

	total := len(cc.Slots) * cc.SongsPerSlot
	res := &BlockResult{Time: bt, Program: cc.Program}
	var tokens []string

	for j := 0; j < cc.SongsPerSlot; j++ {
		res.Processed++
		rank := total - 1 - (slot*cc.SongsPerSlot + j)
		dec := Decision{Position: j, Source: "countdown"}

		song := rankingAt(env.ranking, rank)
		if song == nil {
			tokens = append(tokens, g.cfg.FillerToken)
			dec.Outcome = OutcomeFiller
		} else {
			tokens = append(tokens, MusicToken(song.Artist, song.Title))
			g.tracker.MarkUsed(song.Title, song.Artist, bt)
			dec.Artist, dec.Title, dec.Outcome = song.Artist, song.Title, OutcomeUsed
			res.Found++
		}
		res.Decisions = append(res.Decisions, dec)
	}

	res.Line = BuildLine(bt, cc.Program, tokens)
	return res
}

func slotIndex(slots []string, bt BlockTime) int {
	for i, s := range slots {
		st, err := ParseBlockTime(s)
		if err != nil {
			continue
		}
		if st == bt {
			return i
		}
	}
	return -1
}

func rankingAt(ranking []*database.RankingSong, index int) *database.RankingSong {
	if index < 0 || index >= len(ranking) {
		return nil
	}
	return ranking[index]
}

// topRankedBlock fills its slots from the head of the ranking, skipping
// songs inside the repetition window.
func (g *Generator) topRankedBlock(env *buildEnv, bt BlockTime, fullDay bool) *BlockResult {
	tc := g.cfg.TopRanked
	if !tc.Enabled || slotIndex(tc.Slots, bt) < 0 {
		return nil
	}

	order := env.ranking
	if !tc.Descending {
		order = make([]*database.RankingSong, len(env.ranking))
		for i, song := range env.ranking {
			order[len(order)-1-i] = song
		}
	}

	res := &BlockResult{Time: bt, Program: tc.Program, Processed: tc.SongsPerSlot}
	state := newBlockState()
	var tokens []string

	for _, song := range order {
		if len(tokens) >= tc.SongsPerSlot {
			break
		}
		if state.has(song.Title, song.Artist) {
			continue
		}
		if g.tracker.IsRecentlyUsed(song.Title, song.Artist, bt, fullDay) {
			continue
		}
		tokens = append(tokens, MusicToken(song.Artist, song.Title))
		state.add(song.Title, song.Artist)
		g.tracker.MarkUsed(song.Title, song.Artist, bt)
		res.Decisions = append(res.Decisions, Decision{
			Position: len(tokens) - 1, Source: "top_ranked",
			Artist: song.Artist, Title: song.Title, Outcome: OutcomeUsed,
		})
		res.Found++
	}

	for len(tokens) < tc.SongsPerSlot {
		res.Decisions = append(res.Decisions, Decision{
			Position: len(tokens), Source: "top_ranked", Outcome: OutcomeFiller,
		})
		tokens = append(tokens, g.cfg.FillerToken)
	}

	res.Line = BuildLine(bt, tc.Program, tokens)
	return res
}

// overnightBlock shuffles a regional sub-pool into the overnight window.
// Overnight songs skip the library check: the slot is unattended and a
// filler fallback at play time is acceptable there.
func (g *Generator) overnightBlock(ctx context.Context, env *buildEnv, bt BlockTime, fullDay bool) *BlockResult {
	oc := g.cfg.Overnight
	if !oc.Enabled || !windowContains(oc.Start, oc.End, bt) {
		return nil
	}

	var candidates []*database.PoolEntry
	if oc.RegionalOnly {
		if env.regionalPool == nil {
			entries, err := g.pool.Regional(ctx)
			if err != nil {
				g.logger.Warn().Err(err).Msg("Failed to load regional pool")
				entries = []*database.PoolEntry{}
			}
			env.regionalPool = entries
		}
		candidates = env.regionalPool
	} else {
		candidates = g.combinedPool(ctx, env)
	}

	shuffled := make([]*database.PoolEntry, len(candidates))
	copy(shuffled, candidates)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	res := &BlockResult{Time: bt, Program: oc.Program, Processed: oc.SongsPerSlot}
	state := newBlockState()
	var tokens []string

	for _, entry := range shuffled {
		if len(tokens) >= oc.SongsPerSlot {
			break
		}
		if state.has(entry.Title, entry.Artist) || state.hasArtist(entry.Artist) {
			continue
		}
		if g.tracker.IsRecentlyUsed(entry.Title, entry.Artist, bt, fullDay) {
			continue
		}
		tokens = append(tokens, MusicToken(entry.Artist, entry.Title))
		state.add(entry.Title, entry.Artist)
		g.tracker.MarkUsed(entry.Title, entry.Artist, bt)
		res.Decisions = append(res.Decisions, Decision{
			Position: len(tokens) - 1, Source: "overnight",
			Artist: entry.Artist, Title: entry.Title, Outcome: OutcomeUsed,
		})
		res.Found++
	}

	for len(tokens) < oc.SongsPerSlot {
		res.Decisions = append(res.Decisions, Decision{
			Position: len(tokens), Source: "overnight", Outcome: OutcomeFiller,
		})
		tokens = append(tokens, g.cfg.FillerToken)
	}

	res.Line = BuildLine(bt, oc.Program, tokens)
	return res
}

// normalBlock resolves the active sequence token by token through the
// selection cascade, then splices any fixed content claiming the slot.
func (g *Generator) normalBlock(ctx context.Context, env *buildEnv, day time.Time, bt BlockTime, fullDay bool) *BlockResult {
	seq := ActiveSequence(env.sequences, day, bt)

	program := g.cfg.DefaultProgram
	var srcTokens []string
	if seq != nil {
		if seq.Name != "" && !seq.IsDefault {
			program = seq.Name
		}
		srcTokens = seq.Tokens
	}

	res := &BlockResult{Time: bt, Program: program}
	state := newBlockState()
	var tokens []string

	for pos, src := range srcTokens {
		token, dec := g.resolveToken(ctx, env, day, bt, fullDay, pos, src, state)
		tokens = append(tokens, token)
		res.Decisions = append(res.Decisions, dec)

		if dec.Outcome != OutcomeFixed {
			res.Processed++
		}
		switch dec.Outcome {
		case OutcomeUsed, OutcomeSubstituted:
			res.Found++
		case OutcomeMissing:
			res.Missing++
		}
	}

	if item := ResolveFixedContent(env.fixed, day, bt); item != nil {
		rendered := RenderTemplate(item.FilenameTemplate, bt, day, EditionNumber(item, bt))
		tokens = spliceFixed(tokens, rendered, item.PositionPolicy)
		res.Decisions = append(res.Decisions, Decision{
			Position: len(tokens) - 1, Source: "fixed_content", Title: item.Name, Outcome: OutcomeFixed,
		})
	}

	res.Line = BuildLine(bt, program, tokens)
	return res
}

// resolveToken turns one sequence token into a schedule token. Station ids
// enter the cascade; special tokens short-circuit it.
func (g *Generator) resolveToken(ctx context.Context, env *buildEnv, day time.Time, bt BlockTime, fullDay bool, pos int, src string, state *blockState) (string, Decision) {
	switch {
	case src == g.cfg.FillerToken:
		return g.cfg.FillerToken, Decision{Position: pos, Source: src, Outcome: OutcomeFiller}

	case src == "top50":
		return g.fromRanking(ctx, env, bt, fullDay, pos, src, state)

	case src == "random_pop":
		return g.fromRandomPool(ctx, env, bt, fullDay, pos, src, state)

	case strings.HasPrefix(src, "fixo_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(src, "fixo_"), 10, 64)
		if err == nil {
			if item := FixedContentByID(env.fixed, id); item != nil {
				rendered := RenderTemplate(item.FilenameTemplate, bt, day, 1)
				return rendered, Decision{Position: pos, Source: src, Title: item.Name, Outcome: OutcomeFixed}
			}
		}
		g.logger.Warn().Str("token", src).Msg("Unknown fixed content token, using filler")
		return g.cfg.FillerToken, Decision{Position: pos, Source: src, Outcome: OutcomeFiller}

	default:
		return g.cascade(ctx, env, bt, fullDay, pos, src, state)
	}
}

// cascade runs the five selection tiers for a station token: the station's
// own pool, the ranking, same-style stations, the combined pool, and
// finally the filler literal.
func (g *Generator) cascade(ctx context.Context, env *buildEnv, bt BlockTime, fullDay bool, pos int, stationID string, state *blockState) (string, Decision) {
	missingEmitted := false

	// Tier 1: the station's own pool, freshest capture first.
	for _, entry := range g.stationPool(ctx, env, stationID) {
		if !g.eligible(entry.Title, entry.Artist, bt, fullDay, state) {
			continue
		}
		ok, err := g.libraryHas(ctx, entry.Artist, entry.Title)
		if err != nil {
			continue
		}
		if !ok {
			g.reportMissing(ctx, entry.Title, entry.Artist, stationID)
			missingEmitted = true
			continue
		}
		return g.accept(entry.Title, entry.Artist, bt, state), Decision{
			Position: pos, Source: stationID, Artist: entry.Artist, Title: entry.Title,
			Outcome: OutcomeUsed, Tier: 1,
		}
	}

	// Tier 2: the global ranking.
	if token, dec, ok := g.rankingCandidate(ctx, env, bt, fullDay, pos, stationID, state); ok {
		dec.Tier = 2
		return token, dec
	}

	// Tier 3: pools of other stations sharing the style.
	if st, ok := env.stations[stationID]; ok && st.Style != "" {
		for _, entry := range g.stylePool(ctx, env, st.Style) {
			if entry.StationID == stationID {
				continue
			}
			if !g.eligible(entry.Title, entry.Artist, bt, fullDay, state) {
				continue
			}
			ok, err := g.libraryHas(ctx, entry.Artist, entry.Title)
			if err != nil || !ok {
				continue
			}
			return g.accept(entry.Title, entry.Artist, bt, state), Decision{
				Position: pos, Source: stationID, Artist: entry.Artist, Title: entry.Title,
				Outcome: OutcomeSubstituted, Tier: 3,
			}
		}
	}

	// Tier 4: the combined pool of every station.
	for _, entry := range g.combinedPool(ctx, env) {
		if entry.StationID == stationID {
			continue
		}
		if !g.eligible(entry.Title, entry.Artist, bt, fullDay, state) {
			continue
		}
		ok, err := g.libraryHas(ctx, entry.Artist, entry.Title)
		if err != nil || !ok {
			continue
		}
		return g.accept(entry.Title, entry.Artist, bt, state), Decision{
			Position: pos, Source: stationID, Artist: entry.Artist, Title: entry.Title,
			Outcome: OutcomeSubstituted, Tier: 4,
		}
	}

	// Tier 5: the filler literal.
	outcome := OutcomeFiller
	if missingEmitted {
		outcome = OutcomeMissing
	}
	return g.cfg.FillerToken, Decision{Position: pos, Source: stationID, Outcome: outcome, Tier: 5}
}

// fromRanking resolves a "top50" token: the best ranked song not yet played
// that the library actually has. Absent songs are reported without a source
// station since they come from the ranking, not a capture.
func (g *Generator) fromRanking(ctx context.Context, env *buildEnv, bt BlockTime, fullDay bool, pos int, src string, state *blockState) (string, Decision) {
	missingEmitted := false

	for _, song := range env.ranking {
		if !g.eligible(song.Title, song.Artist, bt, fullDay, state) {
			continue
		}
		ok, err := g.libraryHas(ctx, song.Artist, song.Title)
		if err != nil {
			continue
		}
		if !ok {
			g.reportMissing(ctx, song.Title, song.Artist, "")
			missingEmitted = true
			continue
		}
		return g.accept(song.Title, song.Artist, bt, state), Decision{
			Position: pos, Source: src, Artist: song.Artist, Title: song.Title,
			Outcome: OutcomeUsed, Tier: 2,
		}
	}

	outcome := OutcomeFiller
	if missingEmitted {
		outcome = OutcomeMissing
	}
	return g.cfg.FillerToken, Decision{Position: pos, Source: src, Outcome: outcome, Tier: 5}
}

// fromRandomPool resolves a "random_pop" token from the combined pool.
func (g *Generator) fromRandomPool(ctx context.Context, env *buildEnv, bt BlockTime, fullDay bool, pos int, src string, state *blockState) (string, Decision) {
	candidates := g.combinedPool(ctx, env)
	if len(candidates) > 0 {
		start := rand.Intn(len(candidates))
		for i := 0; i < len(candidates); i++ {
			entry := candidates[(start+i)%len(candidates)]
			if !g.eligible(entry.Title, entry.Artist, bt, fullDay, state) {
				continue
			}
			ok, err := g.libraryHas(ctx, entry.Artist, entry.Title)
			if err != nil || !ok {
				continue
			}
			return g.accept(entry.Title, entry.Artist, bt, state), Decision{
				Position: pos, Source: src, Artist: entry.Artist, Title: entry.Title,
				Outcome: OutcomeUsed, Tier: 4,
			}
		}
	}
	return g.cfg.FillerToken, Decision{Position: pos, Source: src, Outcome: OutcomeFiller, Tier: 5}
}

func (g *Generator) rankingCandidate(ctx context.Context, env *buildEnv, bt BlockTime, fullDay bool, pos int, stationID string, state *blockState) (string, Decision, bool) {
	for _, song := range env.ranking {
		if !g.eligible(song.Title, song.Artist, bt, fullDay, state) {
			continue
		}
		ok, err := g.libraryHas(ctx, song.Artist, song.Title)
		if err != nil || !ok {
			continue
		}
		return g.accept(song.Title, song.Artist, bt, state), Decision{
			Position: pos, Source: stationID, Artist: song.Artist, Title: song.Title,
			Outcome: OutcomeSubstituted,
		}, true
	}
	return "", Decision{}, false
}

// eligible applies the block-local and window repetition rules.
func (g *Generator) eligible(title, artist string, bt BlockTime, fullDay bool, state *blockState) bool {
	if title == "" || artist == "" {
		return false
	}
	if state.has(title, artist) {
		return false
	}
	return !g.tracker.IsRecentlyUsed(title, artist, bt, fullDay)
}

// accept commits a selection: marks it used and returns its token.
func (g *Generator) accept(title, artist string, bt BlockTime, state *blockState) string {
	state.add(title, artist)
	g.tracker.MarkUsed(title, artist, bt)
	return MusicToken(artist, title)
}

// libraryHas checks the local library under the configured timeout. A check
// error excludes the candidate for this cycle without reporting it missing,
// since the song may well exist.
func (g *Generator) libraryHas(ctx context.Context, artist, title string) (bool, error) {
	cctx, cancel := context.WithTimeout(ctx, g.checkTimeout)
	defer cancel()

	ok, err := g.checker.Exists(cctx, artist, title)
	if err != nil {
		g.logger.Warn().Err(err).Str("artist", artist).Str("title", title).Msg("Library check failed")
		return false, err
	}
	return ok, nil
}

func (g *Generator) reportMissing(ctx context.Context, title, artist, stationID string) {
	if g.missing == nil {
		return
	}
	if err := g.missing.Report(ctx, title, artist, stationID); err != nil {
		g.logger.Warn().Err(err).Str("title", title).Str("artist", artist).Msg("Failed to report missing song")
	}
}
