package command

// HelpText is sent on connect and in reply to /help.
const HelpText = `Available commands:
/name [new_name]       - Change your name (a random one if omitted)
/join <room_name>      - Leave your room and join (or create) another
/renameroom <new_name> - Rename your current room
/users                 - List users in your current room
/allusers              - List all connected users
/rooms                 - List all rooms with their member counts
/help                  - Show this help message
/quit                  - Disconnect
Anything else is sent to everyone in your room.`
