package repl

import "github.com/nush-sh/nush/internal/completion"

// lineCompleter adapts the completion engine to readline's AutoCompleter.
//
// Readline's contract replaces length runes before the cursor with a chosen
// candidate; the engine's suggestions carry byte-exact spans over the whole
// token. The adapter drops suggestions whose span does not end at or beyond
// the cursor and rewrites the rest relative to the span start.
type lineCompleter struct {
	engine *completion.Completer
}

func (lc *lineCompleter) Do(line []rune, pos int) ([][]rune, int) {
	if lc.engine == nil {
		return nil, 0
	}
	input := string(line)
	bytePos := len(string(line[:pos]))

	suggestions := lc.engine.Complete(input, bytePos)
	if len(suggestions) == 0 {
		return nil, 0
	}

	// Readline can only replace one contiguous run before the cursor, so all
	// candidates must agree on a span start. The first suggestion's span wins.
	start := suggestions[0].Span.Start
	length := len([]rune(input[start:bytePos]))

	candidates := [][]rune{}
	for _, s := range suggestions {
		if s.Span.Start != start {
			continue
		}
		value := s.Value
		if s.AppendSpace {
			value += " "
		}
		candidates = append(candidates, []rune(value))
	}
	return candidates, length
}
