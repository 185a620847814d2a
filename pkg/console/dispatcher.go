package console

// MaxArgs is the maximum number of tokens the parser will handle,
// including the command name. Further input is dropped.
const MaxArgs = 8

const delimiter = ' '

// Handler is a command implementation. The returned status is advisory:
// 0 means success, any other value (conventionally 255) means failure.
type Handler func(s *Session, argv []string) int

// Command is one entry of a session's command table. The table is
// static for the process lifetime and searched in declaration order.
type Command struct {
	Name string
	Help string
	Func Handler
}

// Tokenize splits a command line on runs of the delimiter. Consecutive
// delimiters produce no empty tokens. At most MaxArgs tokens are
// returned.
func Tokenize(cmd string) []string {
	var argv []string
	start := -1
	for i := 0; i < len(cmd); i++ {
		if cmd[i] == delimiter {
			if start >= 0 {
				argv = append(argv, cmd[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			if len(argv) == MaxArgs {
				break
			}
			start = i
		}
	}
	if start >= 0 && len(argv) < MaxArgs {
		argv = append(argv, cmd[start:])
	}
	return argv
}

// Dispatch tokenizes a committed command line and routes it to the
// first matching table entry. Unknown commands print a diagnostic and
// report success so the session keeps its prompt loop.
func (s *Session) Dispatch(cmd string) int {
	argv := Tokenize(cmd)
	if len(argv) == 0 {
		return 0
	}
	for _, entry := range s.table {
		if entry.Name == argv[0] {
			return entry.Func(s, argv)
		}
	}
	s.Printf("Warning: unknown command. Try \"help\".\r\n")
	return 0
}

// HelpCommand returns the built-in help entry. By convention it is the
// first entry of every command table.
func HelpCommand() Command {
	return Command{
		Name: "help",
		Help: "Prints help for this commandline.\r\n" +
			"supply the name of a command after \"help\" for help with that command",
		Func: helpFunc,
	}
}

func helpFunc(s *Session, argv []string) int {
	switch len(argv) {
	case 1:
		s.Printf("Available Commands:\r\n")
		for _, entry := range s.table {
			s.Printf("%s\r\n", entry.Name)
		}
		return 0
	case 2:
		for _, entry := range s.table {
			if entry.Name == argv[1] {
				s.Printf("%s: %s\r\n", entry.Name, entry.Help)
				return 0
			}
		}
		s.Printf("Unknown command: %s\r\n", argv[1])
		return 255
	default:
		s.Printf("Unsupported number of arguments\r\n")
		return 255
	}
}
