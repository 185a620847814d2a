package console

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	testCases := []struct {
		name string
		cmd  string
		argv []string
	}{
		{"single token", "mount", []string{"mount"}},
		{"two tokens", "sdpwr on", []string{"sdpwr", "on"}},
		{"delimiter run collapsed", "sdpwr   on", []string{"sdpwr", "on"}},
		{"leading and trailing delimiters", "  mount  ", []string{"mount"}},
		{"empty line", "", nil},
		{"delimiters only", "    ", nil},
		{"capped at max args", "a b c d e f g h i j",
			[]string{"a", "b", "c", "d", "e", "f", "g", "h"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.argv, Tokenize(tc.cmd))
		})
	}
}

func testSession(table []Command) (*Session, *scriptStream) {
	stream := newScriptStream("")
	return NewSession(stream, table), stream
}

func TestDispatch(t *testing.T) {
	var gotArgv []string
	table := []Command{
		HelpCommand(),
		{Name: "probe", Help: "Records its arguments", Func: func(s *Session, argv []string) int {
			gotArgv = argv
			return 0
		}},
		{Name: "fail", Help: "Always fails", Func: func(s *Session, argv []string) int {
			return 255
		}},
	}

	t.Run("routes to handler with argv", func(t *testing.T) {
		s, _ := testSession(table)
		require.Equal(t, 0, s.Dispatch("probe  one two"))
		require.Equal(t, []string{"probe", "one", "two"}, gotArgv)
	})

	t.Run("handler status passed through", func(t *testing.T) {
		s, _ := testSession(table)
		require.Equal(t, 255, s.Dispatch("fail"))
	})

	t.Run("unknown command warns but succeeds", func(t *testing.T) {
		s, stream := testSession(table)
		require.Equal(t, 0, s.Dispatch("bogus"))
		require.Equal(t, "Warning: unknown command. Try \"help\".\r\n", stream.out.String())
	})

	t.Run("blank line is a no-op", func(t *testing.T) {
		s, stream := testSession(table)
		require.Equal(t, 0, s.Dispatch("   "))
		require.Empty(t, stream.out.String())
	})
}

func TestHelp(t *testing.T) {
	table := []Command{
		HelpCommand(),
		{Name: "mount", Help: "Mounts the storage volume"},
	}

	t.Run("lists commands", func(t *testing.T) {
		s, stream := testSession(table)
		require.Equal(t, 0, s.Dispatch("help"))
		out := stream.out.String()
		require.True(t, strings.HasPrefix(out, "Available Commands:\r\n"))
		require.Contains(t, out, "help\r\n")
		require.Contains(t, out, "mount\r\n")
	})

	t.Run("per command help", func(t *testing.T) {
		s, stream := testSession(table)
		require.Equal(t, 0, s.Dispatch("help mount"))
		require.Equal(t, "mount: Mounts the storage volume\r\n", stream.out.String())
	})

	t.Run("unknown command", func(t *testing.T) {
		s, stream := testSession(table)
		require.Equal(t, 255, s.Dispatch("help bogus"))
		require.Equal(t, "Unknown command: bogus\r\n", stream.out.String())
	})

	t.Run("too many arguments", func(t *testing.T) {
		s, stream := testSession(table)
		require.Equal(t, 255, s.Dispatch("help a b"))
		require.Equal(t, "Unsupported number of arguments\r\n", stream.out.String())
	})
}

func TestSessionValues(t *testing.T) {
	s, _ := testSession(nil)
	require.Nil(t, s.Get("key"))
	s.Set("key", 42)
	require.Equal(t, 42, s.Get("key"))
	s.Set("key", nil)
	require.Nil(t, s.Get("key"))
}
