/*
Package command classifies inbound chat lines.

Parse turns a raw line into one of a closed set of command variants before any effect is
applied: one type per slash verb, Chat for plain text, Unrecognized for unknown verbs and
Malformed for verbs missing a required argument.
*/
package command

import "strings"

// Command is implemented by every parsed line variant.
type Command interface {
	// Verb returns the slash verb, or "" for chat lines.
	Verb() string
}

// Name asks for a display name change. An empty Name requests a freshly generated one.
type Name struct{ Name string }

// Join moves the session to Room, creating it when needed.
type Join struct{ Room string }

// RenameRoom renames the session's current room.
type RenameRoom struct{ Name string }

// Users lists the members of the current room.
type Users struct{}

// AllUsers lists every held display name.
type AllUsers struct{}

// Rooms lists every room with its member count.
type Rooms struct{}

// Help asks for the help text.
type Help struct{}

// Quit ends the session.
type Quit struct{}

// Chat is a plain message for the current room.
type Chat struct{ Text string }

// Unrecognized is a slash verb that matches no command.
type Unrecognized struct{ Name string }

// Malformed is a known verb missing its required argument.
type Malformed struct {
	Name  string
	Usage string
}

const (
	VerbName       = "/name"
	VerbJoin       = "/join"
	VerbRenameRoom = "/renameroom"
	VerbUsers      = "/users"
	VerbAllUsers   = "/allusers"
	VerbRooms      = "/rooms"
	VerbHelp       = "/help"
	VerbQuit       = "/quit"
)

func (Name) Verb() string { return VerbName }
func (Join) Verb() string { return VerbJoin }
func (RenameRoom) Verb() string { return VerbRenameRoom }
func (Users) Verb() string { return VerbUsers }
func (AllUsers) Verb() string { return VerbAllUsers }
func (Rooms) Verb() string { return VerbRooms }
func (Help) Verb() string { return VerbHelp }
func (Quit) Verb() string { return VerbQuit }
func (Chat) Verb() string { return "" }
func (u Unrecognized) Verb() string { return u.Name }
func (m Malformed) Verb() string { return m.Name }

// verbDef describes one verb: its argument placeholder and how to build the variant.
type verbDef struct {
	usage    string
	required bool
	build    func(arg string) Command
}

var verbs = map[string]verbDef{
	VerbName:       {usage: "/name [new_name]", build: func(arg string) Command { return Name{Name: arg} }},
	VerbJoin:       {usage: "/join <room_name>", required: true, build: func(arg string) Command { return Join{Room: arg} }},
	VerbRenameRoom: {usage: "/renameroom <new_name>", required: true, build: func(arg string) Command { return RenameRoom{Name: arg} }},
	VerbUsers:      {usage: "/users", build: func(string) Command { return Users{} }},
	VerbAllUsers:   {usage: "/allusers", build: func(string) Command { return AllUsers{} }},
	VerbRooms:      {usage: "/rooms", build: func(string) Command { return Rooms{} }},
	VerbHelp:       {usage: "/help", build: func(string) Command { return Help{} }},
	VerbQuit:       {usage: "/quit", build: func(string) Command { return Quit{} }},
}

// Parse classifies line. Surrounding whitespace is trimmed; a command argument is the
// remaining whitespace-separated fields joined by single spaces.
func Parse(line string) Command {
	line = strings.TrimSpace(line)

	if !strings.HasPrefix(line, "/") {
		return Chat{Text: line}
	}

	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])
	arg := strings.Join(fields[1:], " ")

	s, ok := verbs[verb]
	if !ok {
		return Unrecognized{Name: fields[0]}
	}

	if s.required && arg == "" {
		return Malformed{Name: verb, Usage: s.usage}
	}

	return s.build(arg)
}
