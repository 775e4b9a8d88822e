// Package script runs tengo scripts as contact listeners.
//
// A script defines a top-level function
//
//	on_contact := func(engine, contact) { ... }
//
// which is called once per delivered contact. contact is a map with the keys
// kind, self, other, trigger and other_tag. engine exposes destroy(handle),
// emit(name, arg), tag(handle), log(args...) and state, a map that survives
// between calls. Top-level statements run again on every call, so anything a
// script needs to remember goes into engine.state.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/quadcollide/collision"
)

var ErrNoHandler = errors.New("script: on_contact not defined")

const handlerName = "on_contact"

const dispatchScript = `
if __kind != "" {
	on_contact(__engine, __contact)
}
`

// Host carries out the engine calls a script makes.
type Host interface {
	// Destroy removes the gameplay object behind h. It reports false when h
	// is already gone.
	Destroy(h collision.ProxyHandle) bool
	// Emit raises a named gameplay event on behalf of self.
	Emit(name string, self collision.ProxyHandle, arg any)
	// Tag names the kind of object behind h, or "" when unknown.
	Tag(h collision.ProxyHandle) string
}

// Listener runs one compiled script. It is a collision.Target, so it can be
// subscribed to a body or used as a resolver result directly.
type Listener struct {
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
	host     Host
	logger   *log.Logger
	lastErr  error
}

var _ collision.Target = (*Listener)(nil)

// Option configures a Listener.
type Option func(*Listener)

// WithLogger receives runtime errors and script log calls.
func WithLogger(l *log.Logger) Option {
	return func(s *Listener) {
		s.logger = l
	}
}

// WithName sets the name used in log lines and errors.
func WithName(name string) Option {
	return func(s *Listener) {
		s.name = name
	}
}

// Load compiles the script at path.
func Load(path string, host Host, opts ...Option) (*Listener, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: load %s: %w", path, err)
	}
	return New(src, host, append([]Option{WithName(path)}, opts...)...)
}

// New compiles src.
func New(src []byte, host Host, opts ...Option) (*Listener, error) {
	l := &Listener{
		name:  "contact",
		state: &tengo.Map{Value: map[string]tengo.Object{}},
		host:  host,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if err := l.Reload(src); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload replaces the script. On error the previous script stays active.
// The state map is kept.
func (l *Listener) Reload(src []byte) error {
	if l == nil {
		return nil
	}
	if !bytes.Contains(src, []byte(handlerName)) {
		return fmt.Errorf("%w in %s", ErrNoHandler, l.name)
	}

	s := tengo.NewScript(append(append([]byte{}, src...), dispatchScript...))
	_ = s.Add("__kind", "")
	_ = s.Add("__engine", map[string]any{})
	_ = s.Add("__contact", map[string]any{})
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := s.Compile()
	if err != nil {
		return fmt.Errorf("script: compile %s: %w", l.name, err)
	}
	if err := l.run(compiled); err != nil {
		return fmt.Errorf("script: run %s: %w", l.name, err)
	}
	if !compiled.IsDefined(handlerName) {
		return fmt.Errorf("%w in %s", ErrNoHandler, l.name)
	}
	l.compiled = compiled
	return nil
}

// Name returns the script name.
func (l *Listener) Name() string {
	if l == nil {
		return ""
	}
	return l.name
}

// Err returns the error of the most recent call, or nil.
func (l *Listener) Err() error {
	if l == nil {
		return nil
	}
	return l.lastErr
}

// HandleContact calls on_contact. Runtime errors are logged and kept in Err;
// they never reach the response pass.
func (l *Listener) HandleContact(c collision.Contact) {
	if l == nil || l.compiled == nil {
		return
	}
	l.lastErr = l.call(c)
	if l.lastErr != nil && l.logger != nil {
		l.logger.Printf("script: %s: %s %d/%d: %v", l.name, c.Kind, c.Self, c.Other, l.lastErr)
	}
}

func (l *Listener) call(c collision.Contact) (err error) {
	contact := &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"kind":      &tengo.String{Value: c.Kind.String()},
		"self":      &tengo.Int{Value: int64(c.Self)},
		"other":     &tengo.Int{Value: int64(c.Other)},
		"trigger":   boolObject(c.Kind.IsTrigger()),
		"other_tag": &tengo.String{Value: l.tag(c.Other)},
	}}
	if err := l.compiled.Set("__kind", c.Kind.String()); err != nil {
		return err
	}
	if err := l.compiled.Set("__engine", l.engine(c.Self)); err != nil {
		return err
	}
	if err := l.compiled.Set("__contact", contact); err != nil {
		return err
	}
	return l.run(l.compiled)
}

// run executes compiled. Faults the tengo VM raises as panics, such as an
// integer division by zero, come back as errors.
func (l *Listener) run(compiled *tengo.Compiled) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script: %s: panic: %v", l.name, r)
		}
	}()
	return compiled.Run()
}

func (l *Listener) engine(self collision.ProxyHandle) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}
	values["state"] = l.state

	values["destroy"] = &tengo.UserFunction{Name: "destroy", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if l.host == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		h, ok := objectAsHandle(args[0])
		if !ok {
			return tengo.FalseValue, nil
		}
		return boolObject(l.host.Destroy(h)), nil
	}}

	values["emit"] = &tengo.UserFunction{Name: "emit", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if l.host == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		if name == "" {
			return tengo.FalseValue, nil
		}
		var arg any
		if len(args) > 1 {
			arg = tengo.ToInterface(args[1])
		}
		l.host.Emit(name, self, arg)
		return tengo.TrueValue, nil
	}}

	values["tag"] = &tengo.UserFunction{Name: "tag", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return &tengo.String{}, nil
		}
		h, _ := objectAsHandle(args[0])
		return &tengo.String{Value: l.tag(h)}, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if l.logger == nil {
			return tengo.UndefinedValue, nil
		}
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		l.logger.Printf("script: %s: %s", l.name, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func (l *Listener) tag(h collision.ProxyHandle) string {
	if l.host == nil || !h.Valid() {
		return ""
	}
	return l.host.Tag(h)
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func objectAsHandle(obj tengo.Object) (collision.ProxyHandle, bool) {
	switch v := obj.(type) {
	case *tengo.Int:
		if v.Value <= 0 || v.Value > int64(^uint32(0)) {
			return collision.InvalidHandle, false
		}
		return collision.ProxyHandle(v.Value), true
	default:
		return collision.InvalidHandle, false
	}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
