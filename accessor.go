package settings

import (
	"context"
	"fmt"
)

// Accessor reads and writes option values through a Store, enforcing each
// option's declared type and falling back to its default resolver when the
// store holds no value. Getters never fail: a nil option or a type mismatch
// yields the zero value.
type Accessor struct {
	store  Store
	config ConfigReader
	logger Logger
}

// AccessorOption configures an Accessor.
type AccessorOption func(*Accessor)

// WithConfig attaches the static configuration reader handed to resolvers.
func WithConfig(config ConfigReader) AccessorOption {
	return func(a *Accessor) {
		a.config = config
	}
}

// WithLogger attaches a logger for store read failures and rule evaluations.
func WithLogger(logger Logger) AccessorOption {
	return func(a *Accessor) {
		if logger == nil {
			a.logger = noopLogger{}
			return
		}
		a.logger = logger
	}
}

// NewAccessor constructs an Accessor backed by store.
func NewAccessor(store Store, opts ...AccessorOption) *Accessor {
	a := &Accessor{
		store:  store,
		logger: noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// GetInt returns the stored value of an integer option, the value of its
// default resolver when nothing is stored, or 0.
func (a *Accessor) GetInt(ctx context.Context, option *Option) int {
	if option == nil || option.Type != TypeInt {
		return 0
	}
	if value, ok := a.readInt(ctx, option); ok {
		return value
	}
	if option.DefaultInt != nil {
		return option.DefaultInt(a.resolveContext(ctx, option))
	}
	return 0
}

// GetBool returns whether the stored integer of a boolean option is nonzero,
// the value of its default resolver when nothing is stored, or false.
func (a *Accessor) GetBool(ctx context.Context, option *Option) bool {
	if option == nil || option.Type != TypeBool {
		return false
	}
	if value, ok := a.readInt(ctx, option); ok {
		return value != 0
	}
	if option.DefaultBool != nil {
		return option.DefaultBool(a.resolveContext(ctx, option))
	}
	return false
}

// GetStr returns the stored value of a string option or the value of its
// default resolver. ok is false when neither yields a value. Each call reads
// the store again.
func (a *Accessor) GetStr(ctx context.Context, option *Option) (string, bool) {
	if option == nil || option.Type != TypeStr {
		return "", false
	}
	if value, ok := a.readStr(ctx, option); ok {
		return value, true
	}
	if option.DefaultStr != nil {
		return option.DefaultStr(a.resolveContext(ctx, option))
	}
	return "", false
}

// SetInt stores value for an integer option.
func (a *Accessor) SetInt(ctx context.Context, option *Option, value int) error {
	if err := a.checkWrite(option, TypeInt); err != nil {
		return err
	}
	if err := a.store.SetInt(contextOrBackground(ctx), option.Name, value); err != nil {
		return fmt.Errorf("settings: set %q: %w", option.Name, err)
	}
	return nil
}

// SetBool stores value for a boolean option as 0 or 1.
func (a *Accessor) SetBool(ctx context.Context, option *Option, value bool) error {
	if err := a.checkWrite(option, TypeBool); err != nil {
		return err
	}
	stored := 0
	if value {
		stored = 1
	}
	if err := a.store.SetInt(contextOrBackground(ctx), option.Name, stored); err != nil {
		return fmt.Errorf("settings: set %q: %w", option.Name, err)
	}
	return nil
}

// SetStr stores value for a string option.
func (a *Accessor) SetStr(ctx context.Context, option *Option, value string) error {
	if err := a.checkWrite(option, TypeStr); err != nil {
		return err
	}
	if err := a.store.SetStr(contextOrBackground(ctx), option.Name, value); err != nil {
		return fmt.Errorf("settings: set %q: %w", option.Name, err)
	}
	return nil
}

func (a *Accessor) checkWrite(option *Option, want Type) error {
	if option == nil {
		return fmt.Errorf("%w: option is nil", ErrTypeMismatch)
	}
	if option.Type != want {
		return fmt.Errorf("%w: %s is %s, not %s", ErrTypeMismatch, option.Name, option.Type, want)
	}
	if a.store == nil {
		return ErrStoreRequired
	}
	return nil
}

// readInt reports ok only for a value actually present in the store. Read
// errors count as a miss.
func (a *Accessor) readInt(ctx context.Context, option *Option) (int, bool) {
	if a.store == nil {
		return 0, false
	}
	value, found, err := a.store.GetInt(contextOrBackground(ctx), option.Name)
	if err != nil {
		a.logger.LogEvent(Event{Option: option.Name, Stage: StageStoreRead, Err: err})
		return 0, false
	}
	return value, found
}

func (a *Accessor) readStr(ctx context.Context, option *Option) (string, bool) {
	if a.store == nil {
		return "", false
	}
	value, found, err := a.store.GetStr(contextOrBackground(ctx), option.Name)
	if err != nil {
		a.logger.LogEvent(Event{Option: option.Name, Stage: StageStoreRead, Err: err})
		return "", false
	}
	return value, found
}

func (a *Accessor) resolveContext(ctx context.Context, option *Option) ResolveContext {
	return ResolveContext{
		Context: contextOrBackground(ctx),
		Option:  option,
		Config:  a.config,
		logger:  a.logger,
	}
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
