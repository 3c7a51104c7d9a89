package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

var (
	ErrDuplicateCommand = errors.New("duplicate command registration")
	// ErrBadParamCheck marks a hierarchy check attached to a parameter that is
	// not member-typed. This is a configuration error and fatal at startup.
	ErrBadParamCheck = errors.New("hierarchy check on non-member parameter")
)

// Registry maps lowercase command names and aliases to ordered overload sets.
// Built once at startup; read-only afterwards, so concurrent lookups need no
// locking.
type Registry struct {
	byName map[string][]*Command
	names  []string // distinct primary names in registration order
	seq    int
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string][]*Command{}}
}

// Register adds a command under its name and every alias. Registration order
// breaks priority ties among overloads.
func (r *Registry) Register(cmd *Command) error {
	for _, p := range cmd.Params {
		for _, chk := range p.Checks {
			if _, ok := chk.(memberParamCheck); ok && p.Type != TypeMember {
				return fmt.Errorf("%s: param %q: %w", cmd.Name, p.Name, ErrBadParamCheck)
			}
		}
	}

	sig := signature(cmd)
	for _, existing := range r.byName[strings.ToLower(cmd.Name)] {
		if strings.EqualFold(existing.Name, cmd.Name) && signature(existing) == sig {
			return fmt.Errorf("%s %s: %w", cmd.Name, sig, ErrDuplicateCommand)
		}
	}

	cmd.seq = r.seq
	r.seq++

	if len(r.byName[strings.ToLower(cmd.Name)]) == 0 {
		dup := false
		for _, n := range r.names {
			if strings.EqualFold(n, cmd.Name) {
				dup = true
				break
			}
		}
		if !dup {
			r.names = append(r.names, cmd.Name)
		}
	}

	keys := append([]string{cmd.Name}, cmd.Aliases...)
	for _, k := range keys {
		lk := strings.ToLower(k)
		r.byName[lk] = append(r.byName[lk], cmd)
		sort.SliceStable(r.byName[lk], func(i, j int) bool {
			a, b := r.byName[lk][i], r.byName[lk][j]
			if a.Priority != b.Priority {
				return a.Priority > b.Priority
			}
			return a.seq < b.seq
		})
	}
	return nil
}

// Search returns the overloads registered under the given name or alias,
// ordered by descending priority then registration order.
func (r *Registry) Search(nameToken string) []*Command {
	cmds := r.byName[strings.ToLower(nameToken)]
	if len(cmds) == 0 {
		return nil
	}
	out := make([]*Command, len(cmds))
	copy(out, cmds)
	return out
}

// All returns distinct commands in registration order, for help listings.
func (r *Registry) All() []*Command {
	var out []*Command
	for _, name := range r.names {
		out = append(out, r.byName[strings.ToLower(name)]...)
	}
	return out
}

// FuzzySuggest ranks known primary names by edit distance to token. Used only
// for "did you mean" responses, never for execution.
func (r *Registry) FuzzySuggest(token string, maxResults int) []string {
	if maxResults <= 0 || len(r.names) == 0 {
		return nil
	}
	dmp := diffmatchpatch.New()
	token = strings.ToLower(token)

	type ranked struct {
		name string
		dist int
	}
	list := make([]ranked, 0, len(r.names))
	for _, name := range r.names {
		diffs := dmp.DiffMain(token, strings.ToLower(name), false)
		list = append(list, ranked{name: name, dist: dmp.DiffLevenshtein(diffs)})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].dist < list[j].dist })

	if maxResults > len(list) {
		maxResults = len(list)
	}
	out := make([]string, 0, maxResults)
	for _, rk := range list[:maxResults] {
		out = append(out, rk.name)
	}
	return out
}

func signature(cmd *Command) string {
	parts := make([]string, 0, len(cmd.Params))
	for _, p := range cmd.Params {
		parts = append(parts, p.Type.String())
	}
	return "(" + strings.Join(parts, ",") + ")"
}
