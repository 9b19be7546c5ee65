package registry

import (
	"maps"
	"slices"

	"github.com/vk/metaclass/internal/member"
)

// State is the lifecycle state of a class implementation.
type State int

const (
	// StatePlaceholder is a class declared for a module that is not loaded.
	StatePlaceholder State = iota
	// StateReal is a fully described class backed by a resident module.
	StateReal
	// StateUnresolvable is a terminal state for classes whose module could
	// not be loaded, did not provide them, or has been unloaded.
	StateUnresolvable
)

func (s State) String() string {
	switch s {
	case StatePlaceholder:
		return "placeholder"
	case StateReal:
		return "real"
	case StateUnresolvable:
		return "unresolvable"
	default:
		return "unknown"
	}
}

// classImpl is the swappable backing implementation of a Class. A Class
// holds exactly one at a time; implementations are never mutated after
// construction, changes install a new one.
type classImpl interface {
	state() State
	description() string
	baseName() string
	ownMembers() []member.Descriptor
	ownProperties() map[string]string
	cause() error
}

// realImpl carries the full own data of a class.
type realImpl struct {
	desc    string
	base    string
	members []member.Descriptor
	props   map[string]string
}

func (r *realImpl) state() State                     { return StateReal }
func (r *realImpl) description() string              { return r.desc }
func (r *realImpl) baseName() string                 { return r.base }
func (r *realImpl) ownMembers() []member.Descriptor  { return r.members }
func (r *realImpl) ownProperties() map[string]string { return r.props }
func (r *realImpl) cause() error                     { return nil }

// clone returns a copy whose slices and maps can be modified freely.
func (r *realImpl) clone() *realImpl {
	return &realImpl{
		desc:    r.desc,
		base:    r.base,
		members: slices.Clone(r.members),
		props:   maps.Clone(r.props),
	}
}

// placeholderImpl knows only the strings captured from a declaration.
type placeholderImpl struct {
	desc string
	base string
}

func (p *placeholderImpl) state() State                     { return StatePlaceholder }
func (p *placeholderImpl) description() string              { return p.desc }
func (p *placeholderImpl) baseName() string                 { return p.base }
func (p *placeholderImpl) ownMembers() []member.Descriptor  { return nil }
func (p *placeholderImpl) ownProperties() map[string]string { return nil }
func (p *placeholderImpl) cause() error                     { return nil }

// unresolvableImpl keeps the declared strings and the cached failure.
type unresolvableImpl struct {
	desc string
	base string
	err  error
}

func (u *unresolvableImpl) state() State                     { return StateUnresolvable }
func (u *unresolvableImpl) description() string              { return u.desc }
func (u *unresolvableImpl) baseName() string                 { return u.base }
func (u *unresolvableImpl) ownMembers() []member.Descriptor  { return nil }
func (u *unresolvableImpl) ownProperties() map[string]string { return nil }
func (u *unresolvableImpl) cause() error                     { return u.err }

func unresolvable(impl classImpl, err error) *unresolvableImpl {
	return &unresolvableImpl{desc: impl.description(), base: impl.baseName(), err: err}
}
