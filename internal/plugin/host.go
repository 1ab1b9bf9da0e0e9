package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/event"
	"github.com/dshills/caretkit/internal/event/events"
	"github.com/dshills/caretkit/internal/event/topic"
	"github.com/dshills/caretkit/internal/logging"
)

// ModuleName is the global table scripts use to talk to the host.
const ModuleName = "caretkit"

// Plugin is one loaded script with its own Lua state.
type Plugin struct {
	Name string

	state *State
	subs  []*event.Subscription
}

// Subscriptions returns the number of active notification handlers.
func (p *Plugin) Subscriptions() int {
	n := 0
	for _, sub := range p.subs {
		if sub.IsActive() {
			n++
		}
	}
	return n
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithLogger sets the logger for the host and its scripts.
func WithLogger(l *zap.Logger) HostOption {
	return func(h *Host) {
		h.logger = l
	}
}

// WithTimeout sets the execution timeout of every plugin state.
func WithTimeout(d time.Duration) HostOption {
	return func(h *Host) {
		h.timeout = d
	}
}

// Host loads Lua plugins and connects them to a notification bus.
//
// A script registers handlers with caretkit.on(topic, fn). The handler gets
// a table describing the notification; returning false from a handler on a
// cancelable notification prevents its default.
//
//	caretkit.on("object.beforeselect", function(ev)
//	    if ev.tag == "video" then return false end
//	end)
type Host struct {
	bus     *event.Bus
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	plugins map[string]*Plugin
	closed  bool
}

// NewHost creates a host publishing to bus.
func NewHost(bus *event.Bus, opts ...HostOption) *Host {
	h := &Host{
		bus:     bus,
		timeout: DefaultExecutionTimeout,
		plugins: make(map[string]*Plugin),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = logging.Component(logging.OrNop(h.logger), "plugin")
	return h
}

// LoadFile loads the script at path. The plugin is named after the file.
func (h *Host) LoadFile(path string) (*Plugin, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Plugin: name, Op: "read", Err: err}
	}
	return h.LoadString(name, string(code))
}

// LoadString loads a script from source. Loading a name that is already
// loaded replaces the old plugin.
func (h *Host) LoadString(name, code string) (*Plugin, error) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return nil, ErrHostClosed
	}

	logger := h.logger.With(zap.String("plugin", name))
	p := &Plugin{
		Name:  name,
		state: NewState(WithExecutionTimeout(h.timeout), WithStateLogger(logger)),
	}
	h.installModule(p, logger)

	if err := p.state.DoString(code); err != nil {
		h.release(p)
		return nil, &Error{Plugin: name, Op: "load", Err: err}
	}

	h.mu.Lock()
	if old, ok := h.plugins[name]; ok {
		h.release(old)
	}
	h.plugins[name] = p
	h.mu.Unlock()

	logger.Info("plugin loaded", zap.Int("handlers", len(p.subs)))
	return p, nil
}

// LoadDir loads every .lua file in dir in name order.
func (h *Host) LoadDir(dir string) ([]*Plugin, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.lua"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	var out []*Plugin
	for _, path := range paths {
		p, err := h.LoadFile(path)
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Unload removes a plugin and its handlers.
func (h *Host) Unload(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.plugins[name]
	if !ok {
		return false
	}
	h.release(p)
	delete(h.plugins, name)
	h.logger.Info("plugin unloaded", zap.String("plugin", name))
	return true
}

// Plugins returns the loaded plugin names in order.
func (h *Host) Plugins() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.plugins))
	for name := range h.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close unloads every plugin.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for _, p := range h.plugins {
		h.release(p)
	}
	h.plugins = nil
	h.closed = true
}

func (h *Host) release(p *Plugin) {
	for _, sub := range p.subs {
		_ = h.bus.Unsubscribe(sub)
	}
	p.subs = nil
	p.state.Close()
}

// installModule publishes the caretkit table into the plugin state.
func (h *Host) installModule(p *Plugin, logger *zap.Logger) {
	L := p.state.L
	mod := L.NewTable()
	L.SetField(mod, "on", L.NewFunction(func(L *lua.LState) int {
		t := topic.Topic(L.CheckString(1))
		fn := L.CheckFunction(2)
		if !t.IsValid() {
			L.ArgError(1, "invalid topic")
		}
		sub, err := h.bus.Subscribe(t, h.handler(p, fn, logger), event.WithPriority(event.PriorityLow))
		if err != nil {
			L.RaiseError("subscribe %s: %v", t, err)
		}
		p.subs = append(p.subs, sub)
		return 0
	}))
	L.SetField(mod, "log", L.NewFunction(func(L *lua.LState) int {
		msg := L.CheckString(1)
		switch L.OptString(2, "info") {
		case "debug":
			logger.Debug(msg)
		case "warn":
			logger.Warn(msg)
		case "error":
			logger.Error(msg)
		default:
			logger.Info(msg)
		}
		return 0
	}))

	topics := L.NewTable()
	for name, t := range topicNames {
		L.SetField(topics, name, lua.LString(t))
	}
	L.SetField(mod, "topics", topics)
	L.SetGlobal(ModuleName, mod)
}

var topicNames = map[string]topic.Topic{
	"caret_shown":            events.TopicCaretShown,
	"caret_container_shown":  events.TopicCaretContainerShown,
	"before_object_selected": events.TopicBeforeObjectSelected,
	"object_selected":        events.TopicObjectSelected,
	"object_deleted":         events.TopicObjectDeleted,
	"editable_selected":      events.TopicEditableSelected,
	"state_changed":          events.TopicStateChanged,
}

type cancelable interface {
	PreventDefault()
}

// handler adapts a Lua function to a bus handler.
func (h *Host) handler(p *Plugin, fn *lua.LFunction, logger *zap.Logger) event.HandlerFunc {
	return func(_ context.Context, ev any) error {
		fields, payload, ok := describe(ev)
		if !ok {
			return nil
		}
		t := p.state.L.NewTable()
		for k, v := range fields {
			p.state.L.SetField(t, k, v)
		}

		results, err := p.state.CallFunction(fn, t)
		if err != nil {
			return &Error{Plugin: p.Name, Op: "handle " + fields["topic"].String(), Err: err}
		}
		if len(results) > 0 && results[0] == lua.LFalse {
			if c, ok := payload.(cancelable); ok {
				c.PreventDefault()
				logger.Debug("default prevented", zap.String("topic", fields["topic"].String()))
			}
		}
		return nil
	}
}

// describe flattens a selection notification into Lua fields.
func describe(ev any) (map[string]lua.LValue, any, bool) {
	fields := make(map[string]lua.LValue)
	target := func(n *html.Node) {
		if n == nil {
			return
		}
		fields["target"] = lua.LString(dom.Describe(n))
		if n.Type == html.ElementNode {
			fields["tag"] = lua.LString(n.Data)
		}
	}
	meta := func(t topic.Topic, m event.Metadata) {
		fields["topic"] = lua.LString(t)
		fields["source"] = lua.LString(m.Source)
	}

	var payload any
	switch e := ev.(type) {
	case event.Event[*events.CaretShown]:
		meta(e.Type, e.Metadata)
		target(e.Payload.Target)
		fields["direction"] = lua.LNumber(e.Payload.Direction)
		fields["before"] = lua.LBool(e.Payload.Before)
		payload = e.Payload
	case event.Event[*events.CaretContainerShown]:
		meta(e.Type, e.Metadata)
		target(e.Payload.Target)
		payload = e.Payload
	case event.Event[*events.BeforeObjectSelected]:
		meta(e.Type, e.Metadata)
		target(e.Payload.Target)
		payload = e.Payload
	case event.Event[*events.ObjectSelected]:
		meta(e.Type, e.Metadata)
		target(e.Payload.Target)
		payload = e.Payload
	case event.Event[*events.ObjectDeleted]:
		meta(e.Type, e.Metadata)
		target(e.Payload.Target)
		fields["reason"] = lua.LString(e.Payload.Reason)
		payload = e.Payload
	case event.Event[*events.EditableSelected]:
		meta(e.Type, e.Metadata)
		target(e.Payload.Target)
		payload = e.Payload
	case event.Event[*events.StateChanged]:
		meta(e.Type, e.Metadata)
		target(e.Payload.Target)
		fields["from"] = lua.LString(e.Payload.From)
		fields["to"] = lua.LString(e.Payload.To)
		payload = e.Payload
	default:
		return nil, nil, false
	}
	return fields, payload, true
}

// String implements fmt.Stringer.
func (p *Plugin) String() string {
	return fmt.Sprintf("%s (%d handlers)", p.Name, p.Subscriptions())
}
