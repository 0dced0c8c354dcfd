package settings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/goliatone/go-settings/pkg/conffile"
	"github.com/goliatone/go-settings/pkg/store"
)

var errStoreDown = errors.New("store unavailable")

// fakeStore records writes and can be told to fail reads or writes.
type fakeStore struct {
	ints      map[string]int
	strs      map[string]string
	writes    int
	readErr   error
	writeErr  error
	readCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{ints: map[string]int{}, strs: map[string]string{}}
}

func (s *fakeStore) GetInt(_ context.Context, name string) (int, bool, error) {
	s.readCalls++
	if s.readErr != nil {
		return 0, false, s.readErr
	}
	value, ok := s.ints[name]
	return value, ok, nil
}

func (s *fakeStore) GetStr(_ context.Context, name string) (string, bool, error) {
	s.readCalls++
	if s.readErr != nil {
		return "", false, s.readErr
	}
	value, ok := s.strs[name]
	return value, ok, nil
}

func (s *fakeStore) SetInt(_ context.Context, name string, value int) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes++
	s.ints[name] = value
	return nil
}

func (s *fakeStore) SetStr(_ context.Context, name string, value string) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes++
	s.strs[name] = value
	return nil
}

func allowList(sources ...string) ConfigReader {
	return conffile.FromMap(map[string]map[string][]string{
		ConfigSectionLibrary: {ConfigKeyArtworkOnlineSources: sources},
	})
}

func artworkOption(t *testing.T, name string) *Option {
	t.Helper()
	option := Default().Lookup(CategoryArtwork, name)
	if option == nil {
		t.Fatalf("artwork option %q missing", name)
	}
	return option
}

func TestIntRoundTrip(t *testing.T) {
	ctx := context.Background()
	volume := &Option{Name: "volume", Type: TypeInt}
	accessor := NewAccessor(store.NewMemoryStore())

	if err := accessor.SetInt(ctx, volume, 42); err != nil {
		t.Fatalf("SetInt: %v", err)
	}
	if got := accessor.GetInt(ctx, volume); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestStoredValuesReturnedVerbatim(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	s.ints["offset"] = -3
	s.ints["zero"] = 0
	accessor := NewAccessor(s)

	offset := &Option{Name: "offset", Type: TypeInt, DefaultInt: ConstInt(10)}
	zero := &Option{Name: "zero", Type: TypeInt, DefaultInt: ConstInt(10)}
	if got := accessor.GetInt(ctx, offset); got != -3 {
		t.Fatalf("expected stored negative value, got %d", got)
	}
	if got := accessor.GetInt(ctx, zero); got != 0 {
		t.Fatalf("expected stored zero to win over resolver, got %d", got)
	}
}

func TestBoolStoredAsInteger(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	accessor := NewAccessor(s)
	option := &Option{Name: "shuffle", Type: TypeBool}

	if err := accessor.SetBool(ctx, option, true); err != nil {
		t.Fatalf("SetBool: %v", err)
	}
	if s.ints["shuffle"] != 1 {
		t.Fatalf("expected true stored as 1, got %d", s.ints["shuffle"])
	}
	if !accessor.GetBool(ctx, option) {
		t.Fatalf("expected true after SetBool(true)")
	}
	if err := accessor.SetBool(ctx, option, false); err != nil {
		t.Fatalf("SetBool: %v", err)
	}
	if s.ints["shuffle"] != 0 || accessor.GetBool(ctx, option) {
		t.Fatalf("expected false stored as 0")
	}

	s.ints["shuffle"] = 7
	if !accessor.GetBool(ctx, option) {
		t.Fatalf("expected any nonzero stored value to read as true")
	}
}

func TestStrRoundTripReadsFreshValue(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	accessor := NewAccessor(s)
	option := Default().Lookup(CategoryWebInterface, OptionShowComposerForGenre)

	if _, ok := accessor.GetStr(ctx, option); ok {
		t.Fatalf("expected absent string before any write")
	}
	if err := accessor.SetStr(ctx, option, "classical"); err != nil {
		t.Fatalf("SetStr: %v", err)
	}
	if got, ok := accessor.GetStr(ctx, option); !ok || got != "classical" {
		t.Fatalf("expected classical, got %q ok=%t", got, ok)
	}
	s.strs[OptionShowComposerForGenre] = "opera"
	if got, _ := accessor.GetStr(ctx, option); got != "opera" {
		t.Fatalf("expected fresh read from store, got %q", got)
	}
	if err := accessor.SetStr(ctx, option, ""); err != nil {
		t.Fatalf("SetStr: %v", err)
	}
	if got, ok := accessor.GetStr(ctx, option); !ok || got != "" {
		t.Fatalf("expected stored empty string to be present, got %q ok=%t", got, ok)
	}
}

func TestGettersAreTypeGated(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	s.ints["flag"] = 5
	s.strs["flag"] = "text"
	accessor := NewAccessor(s)

	boolOption := &Option{Name: "flag", Type: TypeBool, DefaultBool: ConstBool(true)}
	intOption := &Option{Name: "flag", Type: TypeInt}
	strOption := &Option{Name: "flag", Type: TypeStr}

	if got, ok := accessor.GetStr(ctx, boolOption); ok || got != "" {
		t.Fatalf("expected GetStr on bool option to be absent, got %q", got)
	}
	if got := accessor.GetInt(ctx, boolOption); got != 0 {
		t.Fatalf("expected GetInt on bool option to be 0, got %d", got)
	}
	if accessor.GetBool(ctx, intOption) || accessor.GetBool(ctx, strOption) {
		t.Fatalf("expected GetBool on non-bool options to be false")
	}
	if got := accessor.GetInt(ctx, strOption); got != 0 {
		t.Fatalf("expected GetInt on str option to be 0, got %d", got)
	}
	if accessor.GetInt(ctx, nil) != 0 || accessor.GetBool(ctx, nil) {
		t.Fatalf("expected nil option to read as zero")
	}
	if _, ok := accessor.GetStr(ctx, nil); ok {
		t.Fatalf("expected nil option to read as absent")
	}
	if s.readCalls != 0 {
		t.Fatalf("expected mismatched reads not to touch the store, got %d calls", s.readCalls)
	}
}

func TestSettersAreTypeGated(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	accessor := NewAccessor(s)

	strOption := &Option{Name: "genre", Type: TypeStr}
	intOption := &Option{Name: "volume", Type: TypeInt}
	boolOption := &Option{Name: "shuffle", Type: TypeBool}

	checks := []error{
		accessor.SetInt(ctx, strOption, 1),
		accessor.SetBool(ctx, intOption, true),
		accessor.SetStr(ctx, boolOption, "x"),
		accessor.SetInt(ctx, boolOption, 1),
		accessor.SetInt(ctx, nil, 1),
		accessor.SetBool(ctx, nil, true),
		accessor.SetStr(ctx, nil, "x"),
	}
	for i, err := range checks {
		if !errors.Is(err, ErrTypeMismatch) {
			t.Fatalf("check %d: expected ErrTypeMismatch, got %v", i, err)
		}
	}
	if s.writes != 0 || len(s.ints) != 0 || len(s.strs) != 0 {
		t.Fatalf("expected store untouched, got %d writes", s.writes)
	}
}

func TestStoreWriteFailurePropagates(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	s.writeErr = errStoreDown
	accessor := NewAccessor(s)

	if err := accessor.SetInt(ctx, &Option{Name: "volume", Type: TypeInt}, 1); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error from SetInt, got %v", err)
	}
	if err := accessor.SetBool(ctx, &Option{Name: "shuffle", Type: TypeBool}, true); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error from SetBool, got %v", err)
	}
	err := accessor.SetStr(ctx, &Option{Name: "genre", Type: TypeStr}, "x")
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error from SetStr, got %v", err)
	}
	if !strings.Contains(err.Error(), `"genre"`) {
		t.Fatalf("expected option name in error, got %q", err.Error())
	}
}

func TestAccessorWithoutStore(t *testing.T) {
	ctx := context.Background()
	accessor := NewAccessor(nil, WithConfig(allowList()))

	if !accessor.GetBool(ctx, artworkOption(t, OptionArtworkSourceSpotify)) {
		t.Fatalf("expected resolver fallback without a store")
	}
	if err := accessor.SetInt(ctx, &Option{Name: "volume", Type: TypeInt}, 1); !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
}

func TestFallbackWithoutResolver(t *testing.T) {
	ctx := context.Background()
	accessor := NewAccessor(newFakeStore())

	if accessor.GetBool(ctx, Default().Lookup(CategoryWebInterface, OptionShowComposerNowPlaying)) {
		t.Fatalf("expected false without stored value or resolver")
	}
	if got := accessor.GetInt(ctx, &Option{Name: "volume", Type: TypeInt}); got != 0 {
		t.Fatalf("expected 0 without stored value or resolver, got %d", got)
	}
	if _, ok := accessor.GetStr(ctx, &Option{Name: "genre", Type: TypeStr}); ok {
		t.Fatalf("expected absent without stored value or resolver")
	}
}

func TestResolversUsedOnlyWhenStoreEmpty(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	accessor := NewAccessor(s)

	calls := 0
	option := &Option{Name: "volume", Type: TypeInt, DefaultInt: func(rc ResolveContext) int {
		calls++
		if rc.Option == nil || rc.Option.Name != "volume" {
			t.Fatalf("expected resolver to receive its option, got %+v", rc.Option)
		}
		return 50
	}}
	if got := accessor.GetInt(ctx, option); got != 50 || calls != 1 {
		t.Fatalf("expected resolver value 50 after one call, got %d (%d calls)", got, calls)
	}

	s.ints["volume"] = 20
	if got := accessor.GetInt(ctx, option); got != 20 || calls != 1 {
		t.Fatalf("expected stored value without consulting resolver, got %d (%d calls)", got, calls)
	}

	genre := &Option{Name: "genre", Type: TypeStr, DefaultStr: ConstStr("jazz")}
	if got, ok := accessor.GetStr(ctx, genre); !ok || got != "jazz" {
		t.Fatalf("expected resolver string, got %q ok=%t", got, ok)
	}
}

func TestReadErrorFallsBackAndIsLogged(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	s.readErr = errStoreDown

	var events []Event
	accessor := NewAccessor(s, WithConfig(allowList()), WithLogger(LoggerFunc(func(event Event) {
		events = append(events, event)
	})))

	if !accessor.GetBool(ctx, artworkOption(t, OptionArtworkSourceSpotify)) {
		t.Fatalf("expected resolver fallback after read error")
	}
	if len(events) != 1 {
		t.Fatalf("expected one logged event, got %d", len(events))
	}
	if events[0].Stage != StageStoreRead || !errors.Is(events[0].Err, errStoreDown) || events[0].Option != OptionArtworkSourceSpotify {
		t.Fatalf("unexpected event %+v", events[0])
	}
}

func TestArtworkDefaultsWithoutAllowList(t *testing.T) {
	ctx := context.Background()
	readers := map[string]ConfigReader{
		"no reader":  nil,
		"empty file": conffile.Empty(),
		"empty list": allowList(),
	}
	for name, reader := range readers {
		t.Run(name, func(t *testing.T) {
			accessor := NewAccessor(store.NewMemoryStore(), WithConfig(reader))
			if !accessor.GetBool(ctx, artworkOption(t, OptionArtworkSourceSpotify)) {
				t.Fatalf("expected spotify enabled by default")
			}
			if accessor.GetBool(ctx, artworkOption(t, OptionArtworkSourceDiscogs)) {
				t.Fatalf("expected discogs disabled by default")
			}
			if accessor.GetBool(ctx, artworkOption(t, OptionArtworkSourceCoverArtArchive)) {
				t.Fatalf("expected coverartarchive disabled by default")
			}
		})
	}
}

func TestArtworkDefaultsWithAllowList(t *testing.T) {
	ctx := context.Background()
	accessor := NewAccessor(store.NewMemoryStore(), WithConfig(allowList("DISCOGS")))

	if accessor.GetBool(ctx, artworkOption(t, OptionArtworkSourceSpotify)) {
		t.Fatalf("expected spotify disabled once an allow-list is configured")
	}
	if !accessor.GetBool(ctx, artworkOption(t, OptionArtworkSourceDiscogs)) {
		t.Fatalf("expected discogs enabled by case-insensitive match")
	}
	if accessor.GetBool(ctx, artworkOption(t, OptionArtworkSourceCoverArtArchive)) {
		t.Fatalf("expected coverartarchive disabled when not listed")
	}
}

func TestArtworkStoredValueOverridesAllowList(t *testing.T) {
	ctx := context.Background()
	accessor := NewAccessor(store.NewMemoryStore(), WithConfig(allowList("spotify")))
	spotify := artworkOption(t, OptionArtworkSourceSpotify)
	coverart := artworkOption(t, OptionArtworkSourceCoverArtArchive)

	if err := accessor.SetBool(ctx, spotify, false); err != nil {
		t.Fatalf("SetBool: %v", err)
	}
	if err := accessor.SetBool(ctx, coverart, true); err != nil {
		t.Fatalf("SetBool: %v", err)
	}
	if accessor.GetBool(ctx, spotify) {
		t.Fatalf("expected stored false to win over allow-list")
	}
	if !accessor.GetBool(ctx, coverart) {
		t.Fatalf("expected stored true to win over allow-list")
	}
}

func TestAccessorOverSQLiteStore(t *testing.T) {
	ctx := context.Background()
	db, err := store.OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	accessor := NewAccessor(db, WithConfig(allowList("discogs")))
	discogs := artworkOption(t, OptionArtworkSourceDiscogs)
	if !accessor.GetBool(ctx, discogs) {
		t.Fatalf("expected allow-list default before any write")
	}
	if err := accessor.SetBool(ctx, discogs, false); err != nil {
		t.Fatalf("SetBool: %v", err)
	}
	if accessor.GetBool(ctx, discogs) {
		t.Fatalf("expected stored false after write")
	}
}

func TestSlogLoggerAcceptsEvents(t *testing.T) {
	var buf strings.Builder
	logger := SlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	logger.LogEvent(Event{Option: "volume", Stage: StageStoreRead, Err: errStoreDown})
	logger.LogEvent(Event{Option: "volume", Stage: StageResolve, Engine: "expr", Expr: "1"})

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "store unavailable") {
		t.Fatalf("expected warn entry with error, got %q", out)
	}
	if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "engine=expr") {
		t.Fatalf("expected debug entry with engine, got %q", out)
	}

	SlogLogger(nil).LogEvent(Event{Stage: StageResolve})
}
