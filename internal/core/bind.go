package core

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type bindFailKind int

const (
	bindMissingArgument bindFailKind = iota
	bindParseFailed
)

type bindFailure struct {
	kind   bindFailKind
	reason string
	// structural reports whether the argument count fit the parameter list
	// and only a type conversion failed.
	structural bool
}

// SplitArgs tokenizes command text, honoring double quotes so multi-word
// values can be passed to non-remainder parameters.
func SplitArgs(s string) []string {
	var args []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			args = append(args, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			if inQuote {
				args = append(args, cur.String())
				cur.Reset()
				inQuote = false
			} else {
				flush()
				inQuote = true
			}
		case (r == ' ' || r == '\n' || r == '\t') && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return args
}

// bind tries to fit args onto the command's parameter list. Member parameters
// are resolved against the gateway's guild snapshot.
func bind(gw Gateway, guildID string, cmd *Command, args []string) ([]Value, *bindFailure) {
	values := make([]Value, 0, len(cmd.Params))
	rest := args

	for _, p := range cmd.Params {
		if p.Remainder {
			if len(rest) == 0 {
				if p.Optional {
					values = append(values, Value{Type: p.Type})
					rest = nil
					continue
				}
				return nil, &bindFailure{
					kind:   bindMissingArgument,
					reason: fmt.Sprintf("missing required argument %q", p.Name),
				}
			}
			values = append(values, Value{Raw: strings.Join(rest, " "), Type: p.Type, Set: true})
			rest = nil
			continue
		}

		if len(rest) == 0 {
			if p.Optional {
				values = append(values, Value{Type: p.Type})
				continue
			}
			return nil, &bindFailure{
				kind:   bindMissingArgument,
				reason: fmt.Sprintf("missing required argument %q", p.Name),
			}
		}

		raw := rest[0]
		rest = rest[1:]
		v := Value{Raw: raw, Type: p.Type, Set: true}

		switch p.Type {
		case TypeInt:
			n, ok := parseInt(raw)
			if !ok {
				return nil, &bindFailure{
					kind:       bindParseFailed,
					reason:     fmt.Sprintf("argument %q is not a number", p.Name),
					structural: arityFits(cmd, len(args)),
				}
			}
			v.Int = n
		case TypeMember:
			m, err := resolveMember(gw, guildID, raw)
			if err != nil {
				return nil, &bindFailure{
					kind:       bindParseFailed,
					reason:     fmt.Sprintf("couldn't resolve %q to a member: %v", raw, err),
					structural: arityFits(cmd, len(args)),
				}
			}
			v.Member = m
		}
		values = append(values, v)
	}

	if len(rest) > 0 {
		return nil, &bindFailure{
			kind:   bindParseFailed,
			reason: fmt.Sprintf("too many arguments (got %d extra)", len(rest)),
		}
	}
	return values, nil
}

// arityFits reports whether n supplied arguments satisfy the parameter list's
// min/max arity, ignoring types.
func arityFits(cmd *Command, n int) bool {
	min, max := 0, 0
	unbounded := false
	for _, p := range cmd.Params {
		if !p.Optional {
			min++
		}
		max++
		if p.Remainder {
			unbounded = true
		}
	}
	if n < min {
		return false
	}
	return unbounded || n <= max
}

// resolveMember accepts a mention (<@id> / <@!id>) or a bare user ID.
func resolveMember(gw Gateway, guildID, token string) (*discordgo.Member, error) {
	if guildID == "" {
		return nil, fmt.Errorf("not in a server")
	}
	id := strings.TrimSuffix(token, ">")
	id = strings.TrimPrefix(id, "<@")
	id = strings.TrimPrefix(id, "!")
	if id == "" || strings.ContainsFunc(id, func(r rune) bool { return r < '0' || r > '9' }) {
		return nil, fmt.Errorf("not a mention or user ID")
	}
	return gw.Member(guildID, id)
}
