package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"dkptally/internal/domain/resolve"
)

const promptHelp = `For each unknown name, enter one of:
  1-5       use that suggestion ("2!" also saves the alias for future runs)
  <name>    replace the token with what you type (several words allowed)
  a [name]  add as a brand-new player ("a!" also saves the alias)
  p         merge with the previous name
  n         merge with the next name
  d, enter  discard this token
  q         abort without scoring`

// promptResolver answers resolution requests from an interactive
// terminal session.
type promptResolver struct {
	in       *bufio.Scanner
	out      io.Writer
	helpDone bool
}

// newPromptResolver builds a resolve.Func that prompts on out and reads
// decisions from in, one line per unknown token.
func newPromptResolver(in io.Reader, out io.Writer) resolve.Func {
	p := &promptResolver{in: bufio.NewScanner(in), out: out}
	return p.resolve
}

func (p *promptResolver) resolve(ctx context.Context, req resolve.Request) (*resolve.Resolution, error) {
	if !p.helpDone {
		fmt.Fprintln(p.out, promptHelp)
		p.helpDone = true
	}

	fmt.Fprintf(p.out, "\nunknown name %q\n", req.Token)
	if req.PrevLine != "" {
		fmt.Fprintf(p.out, "  prev | %s\n", req.PrevLine)
	}
	fmt.Fprintf(p.out, "  line | %s\n", req.Line)
	if req.NextLine != "" {
		fmt.Fprintf(p.out, "  next | %s\n", req.NextLine)
	}
	if len(req.Suggestions) > 0 {
		parts := make([]string, len(req.Suggestions))
		for i, s := range req.Suggestions {
			parts[i] = fmt.Sprintf("%d) %s", i+1, s)
		}
		fmt.Fprintln(p.out, "  suggestions:", strings.Join(parts, "  "))
	}
	if req.PrevMerge != "" {
		fmt.Fprintf(p.out, "  p) merge into %q\n", req.PrevMerge+req.Token)
	}
	if req.NextMerge != "" {
		fmt.Fprintf(p.out, "  n) merge into %q\n", req.Token+req.NextMerge)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fmt.Fprint(p.out, "> ")
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return nil, err
			}
			return nil, errors.New("input closed before all names were resolved")
		}

		res, err, ok := p.parse(strings.TrimSpace(p.in.Text()), req)
		if !ok {
			continue
		}
		return res, err
	}
}

// parse turns one input line into a resolution. ok is false when the
// input was invalid and the caller should prompt again.
func (p *promptResolver) parse(text string, req resolve.Request) (res *resolve.Resolution, err error, ok bool) {
	switch text {
	case "", "d":
		return nil, nil, true
	case "q":
		return nil, errors.New("aborted"), true
	case "p":
		if req.PrevMerge == "" {
			fmt.Fprintln(p.out, "no previous name to merge with")
			return nil, nil, false
		}
		return &resolve.Resolution{
			Names:         []string{req.PrevMerge + req.Token},
			MergeWithPrev: true,
			Reprocess:     true,
		}, nil, true
	case "n":
		if req.NextMerge == "" {
			fmt.Fprintln(p.out, "no next name to merge with")
			return nil, nil, false
		}
		return &resolve.Resolution{
			Names:         []string{req.Token + req.NextMerge},
			MergeWithNext: true,
			Reprocess:     true,
		}, nil, true
	}

	// A bare number picks a suggestion; a trailing "!" saves the alias.
	pick := strings.TrimSuffix(text, "!")
	if k, convErr := strconv.Atoi(pick); convErr == nil {
		if k < 1 || k > len(req.Suggestions) {
			fmt.Fprintf(p.out, "pick a suggestion between 1 and %d\n", len(req.Suggestions))
			return nil, nil, false
		}
		return &resolve.Resolution{
			Names:         []string{req.Suggestions[k-1]},
			CacheOriginal: true,
			PersistAlias:  pick != text,
		}, nil, true
	}

	fields := strings.Fields(text)
	if verb := fields[0]; verb == "a" || verb == "a!" {
		name := titleCase(req.Token)
		if len(fields) > 1 {
			name = fields[1]
		}
		return &resolve.Resolution{
			Names:        []string{name},
			AddNew:       true,
			PersistAlias: verb == "a!",
		}, nil, true
	}

	// Anything else is a typed replacement, re-resolved strictly so a
	// typo in the replacement prompts again instead of minting a name.
	return &resolve.Resolution{Names: fields, Reprocess: true}, nil, true
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return string(unicode.ToUpper(r[0])) + string(r[1:])
}
