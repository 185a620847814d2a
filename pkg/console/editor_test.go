package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptStream feeds scripted input bytes one at a time and captures
// everything the editor echoes back.
type scriptStream struct {
	in  *bytes.Reader
	out bytes.Buffer
}

func newScriptStream(input string) *scriptStream {
	return &scriptStream{in: bytes.NewReader([]byte(input))}
}

func (s *scriptStream) Read(p []byte) (int, error) {
	b, err := s.in.ReadByte()
	if err != nil {
		return 0, err
	}
	p[0] = b
	return 1, nil
}

func (s *scriptStream) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func readLines(t *testing.T, e *Editor, count int) []string {
	lines := make([]string, count)
	for i := range lines {
		line, err := e.ReadLine()
		require.NoErrorf(t, err, "line %d", i)
		lines[i] = line
	}
	return lines
}

func TestEditorReadLine(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		lines  []string
		output string
	}{
		{
			name:   "echo and commit",
			input:  "hello\r",
			lines:  []string{"hello"},
			output: "-> hello\r\n",
		},
		{
			name:   "backspace erases last byte",
			input:  "ab\bc\r",
			lines:  []string{"ac"},
			output: "-> ab\b \bc\r\n",
		},
		{
			name:   "backspace on empty line ignored",
			input:  "\bab\r",
			lines:  []string{"ab"},
			output: "-> ab\r\n",
		},
		{
			name:   "empty commit",
			input:  "\rok\r",
			lines:  []string{"", "ok"},
			output: "-> \r\n-> ok\r\n",
		},
		{
			name:   "cursor left overwrites in place",
			input:  "abc\x1b[DX\r",
			lines:  []string{"abX"},
			output: "-> abc\x1b[DX\r\n",
		},
		{
			name:   "cursor left clamps at line start",
			input:  "\x1b[Da\r",
			lines:  []string{"a"},
			output: "-> a\r\n",
		},
		{
			name:   "cursor right clamps at line end",
			input:  "a\x1b[Cb\r",
			lines:  []string{"ab"},
			output: "-> ab\r\n",
		},
		{
			name:   "cursor right replays after left",
			input:  "ab\x1b[D\x1b[C\r",
			lines:  []string{"ab"},
			output: "-> ab\x1b[D\x1b[C\r\n",
		},
		{
			name:   "unrecognized escape pair echoed verbatim",
			input:  "\x1bOPok\r",
			lines:  []string{"ok"},
			output: "-> OPok\r\n",
		},
		{
			name:   "unknown csi ignored",
			input:  "\x1b[Hok\r",
			lines:  []string{"ok"},
			output: "-> ok\r\n",
		},
		{
			name:   "recall previous command",
			input:  "one\r\x1b[A\r",
			lines:  []string{"one", "one"},
			output: "-> one\r\n-> \x1b[2K\r-> one\r\n",
		},
		{
			name:   "recall up on empty history clamps",
			input:  "\x1b[Ax\r",
			lines:  []string{"x"},
			output: "-> x\r\n",
		},
		{
			name:   "recall down on empty history clamps",
			input:  "\x1b[Bx\r",
			lines:  []string{"x"},
			output: "-> x\r\n",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stream := newScriptStream(tc.input)
			editor := NewEditor(stream)
			require.Equal(t, tc.lines, readLines(t, editor, len(tc.lines)))
			require.Equal(t, tc.output, stream.out.String())
		})
	}
}

func TestEditorLineFull(t *testing.T) {
	long := strings.Repeat("a", MaxLine+5)
	stream := newScriptStream(long + "\r")
	editor := NewEditor(stream)
	line, err := editor.ReadLine()
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("a", MaxLine-1), line)
	require.Equal(t, "-> "+strings.Repeat("a", MaxLine-1)+"\r\n", stream.out.String())
}

func TestEditorHistoryWalk(t *testing.T) {
	// Three commands committed, then four Ups: the fourth lands on the
	// ring boundary and clamps at the oldest entry.
	stream := newScriptStream("one\rtwo\rthree\r\x1b[A\x1b[A\x1b[A\x1b[A\r")
	editor := NewEditor(stream)
	lines := readLines(t, editor, 4)
	require.Equal(t, []string{"one", "two", "three", "one"}, lines)
}

func TestEditorHistoryDownAfterUp(t *testing.T) {
	stream := newScriptStream("one\rtwo\r\x1b[A\x1b[A\x1b[B\r")
	editor := NewEditor(stream)
	lines := readLines(t, editor, 3)
	require.Equal(t, []string{"one", "two", "two"}, lines)
}

func TestEditorHistorySkipsEmptyCommit(t *testing.T) {
	stream := newScriptStream("one\r\r\x1b[A\r")
	editor := NewEditor(stream)
	lines := readLines(t, editor, 3)
	require.Equal(t, []string{"one", "", "one"}, lines)
}

func TestEditorRecallThenEdit(t *testing.T) {
	stream := newScriptStream("mount\r\x1b[A\b\b\r")
	editor := NewEditor(stream)
	lines := readLines(t, editor, 2)
	require.Equal(t, []string{"mount", "mou"}, lines)
}

func TestEditorReadError(t *testing.T) {
	stream := newScriptStream("abc")
	editor := NewEditor(stream)
	_, err := editor.ReadLine()
	require.Error(t, err)
}
